package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"rocketshoes-cart/internal/model"
	"rocketshoes-cart/internal/notifier"
	"rocketshoes-cart/internal/repository"
)

type fakeCatalog struct {
	stock        map[int]int
	products     map[int]model.Product
	stockErr     error
	productErr   error
	stockCalls   int
	productCalls int
}

func (f *fakeCatalog) GetStock(ctx context.Context, id int) (*model.Stock, error) {
	f.stockCalls++
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return &model.Stock{ID: id, Amount: f.stock[id]}, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	f.productCalls++
	if f.productErr != nil {
		return nil, f.productErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("404")
	}
	return &p, nil
}

type recordingNotifier struct {
	warnings []string
	errors   []string
}

func (r *recordingNotifier) Warn(ctx context.Context, msg string) {
	r.warnings = append(r.warnings, msg)
}
func (r *recordingNotifier) Error(ctx context.Context, msg string) { r.errors = append(r.errors, msg) }

type flakyStore struct {
	*repository.CartRepository
	saveErr error
}

func (f *flakyStore) Save(ctx context.Context, cart []model.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.CartRepository.Save(ctx, cart)
}

var _ notifier.Notifier = (*recordingNotifier)(nil)

const testKey = "@RocketShoes:cart"

type fixture struct {
	svc     *CartService
	catalog *fakeCatalog
	notes   *recordingNotifier
	repo    *repository.CartRepository
	store   *flakyStore
}

func newFixture(t *testing.T, initial []model.Product, stock map[int]int) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := repository.NewCartRepository(repository.NewMemoryStore(), testKey)
	if initial != nil {
		if err := repo.Save(ctx, initial); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}

	f := &fixture{
		catalog: &fakeCatalog{
			stock: stock,
			products: map[int]model.Product{
				1: {ID: 1, Title: "Tenis de Caminhada Leve", Price: 179.9, Image: "1.jpg"},
				2: {ID: 2, Title: "Tenis VR Caminhada", Price: 139.9, Image: "2.jpg"},
			},
		},
		notes: &recordingNotifier{},
		repo:  repo,
	}
	f.store = &flakyStore{CartRepository: repo}
	f.svc = NewCartService(f.catalog, f.store, f.notes)
	if err := f.svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

// persisted reads the cart back from storage, bypassing the service.
func (f *fixture) persisted(t *testing.T) []model.Product {
	t.Helper()
	cart, err := f.repo.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return cart
}

func amounts(cart []model.Product) map[int]int {
	out := make(map[int]int, len(cart))
	for _, p := range cart {
		out[p.ID] = p.Amount
	}
	return out
}

func TestAddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("new product -> one entry with amount 1", func(t *testing.T) {
		f := newFixture(t, nil, map[int]int{1: 1})

		if err := f.svc.AddProduct(ctx, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cart := f.svc.Cart()
		if len(cart) != 1 || cart[0].ID != 1 || cart[0].Amount != 1 {
			t.Fatalf("expected [{1 amount 1}], got %+v", cart)
		}
		if cart[0].Title != "Tenis de Caminhada Leve" {
			t.Errorf("expected product details to be fetched, got %+v", cart[0])
		}
		if !reflect.DeepEqual(f.persisted(t), cart) {
			t.Errorf("storage out of sync with memory")
		}
		if len(f.notes.warnings)+len(f.notes.errors) != 0 {
			t.Errorf("expected no notifications, got %+v", f.notes)
		}
	})

	t.Run("present product -> increments by exactly one", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Title: "A", Amount: 2}}, map[int]int{1: 3})

		if err := f.svc.AddProduct(ctx, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := amounts(f.svc.Cart()); got[1] != 3 || len(got) != 1 {
			t.Fatalf("expected amount 3, got %v", got)
		}
		if f.catalog.productCalls != 0 {
			t.Errorf("did not expect product lookup for a present entry")
		}
		if got := amounts(f.persisted(t)); got[1] != 3 {
			t.Errorf("expected persisted amount 3, got %v", got)
		}
	})

	t.Run("empty cart and zero stock -> unchanged with warning", func(t *testing.T) {
		f := newFixture(t, []model.Product{}, map[int]int{1: 0})

		err := f.svc.AddProduct(ctx, 1)
		if !errors.Is(err, ErrOutOfStock) {
			t.Fatalf("expected ErrOutOfStock, got %v", err)
		}
		if len(f.svc.Cart()) != 0 {
			t.Fatalf("expected empty cart, got %+v", f.svc.Cart())
		}
		if len(f.notes.warnings) != 1 || f.notes.warnings[0] != MsgOutOfStock {
			t.Fatalf("expected stock warning, got %+v", f.notes.warnings)
		}
		if f.catalog.productCalls != 0 {
			t.Errorf("did not expect product lookup after stock rejection")
		}
	})

	t.Run("increment beyond stock -> unchanged with warning", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, map[int]int{1: 2})

		if err := f.svc.AddProduct(ctx, 1); !errors.Is(err, ErrOutOfStock) {
			t.Fatalf("expected ErrOutOfStock, got %v", err)
		}
		if got := amounts(f.svc.Cart()); got[1] != 2 {
			t.Fatalf("expected amount to stay 2, got %v", got)
		}
		if got := amounts(f.persisted(t)); got[1] != 2 {
			t.Fatalf("expected persisted amount to stay 2, got %v", got)
		}
	})

	t.Run("stock lookup failure -> generic error", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.catalog.stockErr = errors.New("connection refused")

		err := f.svc.AddProduct(ctx, 1)
		if !errors.Is(err, ErrUnexpected) {
			t.Fatalf("expected ErrUnexpected, got %v", err)
		}
		if len(f.notes.errors) != 1 || f.notes.errors[0] != MsgAddFailed {
			t.Fatalf("expected add failure notification, got %+v", f.notes.errors)
		}
		if len(f.svc.Cart()) != 0 {
			t.Fatalf("expected empty cart")
		}
	})

	t.Run("product lookup failure -> generic error", func(t *testing.T) {
		f := newFixture(t, nil, map[int]int{7: 5})

		if err := f.svc.AddProduct(ctx, 7); !errors.Is(err, ErrUnexpected) {
			t.Fatalf("expected ErrUnexpected, got %v", err)
		}
		if len(f.svc.Cart()) != 0 {
			t.Fatalf("expected empty cart")
		}
	})

	t.Run("persist failure -> memory untouched", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 1}}, map[int]int{1: 5})
		f.store.saveErr = errors.New("quota exceeded")

		if err := f.svc.AddProduct(ctx, 1); !errors.Is(err, ErrUnexpected) {
			t.Fatalf("expected ErrUnexpected, got %v", err)
		}
		if got := amounts(f.svc.Cart()); got[1] != 1 {
			t.Fatalf("expected amount to stay 1, got %v", got)
		}
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		f := newFixture(t, nil, map[int]int{1: 5, 2: 5})

		_ = f.svc.AddProduct(ctx, 2)
		_ = f.svc.AddProduct(ctx, 1)
		_ = f.svc.AddProduct(ctx, 2)

		cart := f.svc.Cart()
		if len(cart) != 2 || cart[0].ID != 2 || cart[1].ID != 1 {
			t.Fatalf("expected order [2 1], got %+v", cart)
		}
		if cart[0].Amount != 2 {
			t.Fatalf("expected product 2 amount 2, got %d", cart[0].Amount)
		}
	})
}

func TestRemoveProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("present -> removed", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 1}, {ID: 2, Amount: 4}}, nil)

		if err := f.svc.RemoveProduct(ctx, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cart := f.svc.Cart()
		if len(cart) != 1 || cart[0].ID != 2 {
			t.Fatalf("expected only product 2, got %+v", cart)
		}
		if got := f.persisted(t); len(got) != 1 || got[0].ID != 2 {
			t.Fatalf("expected persisted cart with only product 2, got %+v", got)
		}
	})

	t.Run("absent -> unchanged with error", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 2, Amount: 4}}, nil)

		err := f.svc.RemoveProduct(ctx, 1)
		if !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		if len(f.svc.Cart()) != 1 {
			t.Fatalf("expected cart unchanged, got %+v", f.svc.Cart())
		}
		if len(f.notes.errors) != 1 || f.notes.errors[0] != MsgRemoveFailed {
			t.Fatalf("expected remove failure notification, got %+v", f.notes.errors)
		}
	})

	t.Run("never calls the catalog", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 1}}, nil)
		_ = f.svc.RemoveProduct(ctx, 1)
		if f.catalog.stockCalls+f.catalog.productCalls != 0 {
			t.Fatalf("unexpected catalog calls")
		}
	})
}

func TestUpdateProductAmount(t *testing.T) {
	ctx := context.Background()

	t.Run("within stock -> amount set", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, map[int]int{1: 5})

		err := f.svc.UpdateProductAmount(ctx, model.UpdateProductAmount{ProductID: 1, Amount: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Product{{ID: 1, Amount: 3}}
		if got := f.svc.Cart(); !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
		if got := f.persisted(t); !reflect.DeepEqual(got, want) {
			t.Fatalf("expected persisted %+v, got %+v", want, got)
		}
	})

	t.Run("non-positive amount -> no-op", func(t *testing.T) {
		for _, amount := range []int{0, -1} {
			f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, map[int]int{1: 5})

			err := f.svc.UpdateProductAmount(ctx, model.UpdateProductAmount{ProductID: 1, Amount: amount})
			if err != nil {
				t.Fatalf("amount %d: expected nil, got %v", amount, err)
			}
			if got := amounts(f.svc.Cart()); got[1] != 2 {
				t.Fatalf("amount %d: expected cart unchanged, got %v", amount, got)
			}
			if f.catalog.stockCalls != 0 || len(f.notes.warnings)+len(f.notes.errors) != 0 {
				t.Fatalf("amount %d: expected no stock lookup and no notification", amount)
			}
		}
	})

	t.Run("above stock -> unchanged with warning", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, map[int]int{1: 5})

		err := f.svc.UpdateProductAmount(ctx, model.UpdateProductAmount{ProductID: 1, Amount: 6})
		if !errors.Is(err, ErrOutOfStock) {
			t.Fatalf("expected ErrOutOfStock, got %v", err)
		}
		if got := amounts(f.svc.Cart()); got[1] != 2 {
			t.Fatalf("expected amount to stay 2, got %v", got)
		}
		if len(f.notes.warnings) != 1 || f.notes.warnings[0] != MsgOutOfStock {
			t.Fatalf("expected stock warning, got %+v", f.notes.warnings)
		}
	})

	t.Run("absent product -> unchanged with error", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, map[int]int{1: 5, 2: 5})

		err := f.svc.UpdateProductAmount(ctx, model.UpdateProductAmount{ProductID: 2, Amount: 1})
		if !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		if len(f.notes.errors) != 1 || f.notes.errors[0] != MsgUpdateFailed {
			t.Fatalf("expected update failure notification, got %+v", f.notes.errors)
		}
		if len(f.svc.Cart()) != 1 {
			t.Fatalf("expected cart unchanged")
		}
	})

	t.Run("stock failure -> generic error", func(t *testing.T) {
		f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, nil)
		f.catalog.stockErr = errors.New("timeout")

		err := f.svc.UpdateProductAmount(ctx, model.UpdateProductAmount{ProductID: 1, Amount: 1})
		if !errors.Is(err, ErrUnexpected) {
			t.Fatalf("expected ErrUnexpected, got %v", err)
		}
		if len(f.notes.errors) != 1 || f.notes.errors[0] != MsgUpdateFailed {
			t.Fatalf("expected update failure notification, got %+v", f.notes.errors)
		}
	})
}

func TestCartSnapshotIsolation(t *testing.T) {
	f := newFixture(t, []model.Product{{ID: 1, Amount: 2}}, nil)

	snapshot := f.svc.Cart()
	snapshot[0].Amount = 99

	if got := amounts(f.svc.Cart()); got[1] != 2 {
		t.Fatalf("snapshot mutation leaked into state: %v", got)
	}
}

func TestLoadRejectsCorruptStorage(t *testing.T) {
	store := repository.NewMemoryStore()
	_ = store.Set(context.Background(), testKey, "not json")
	repo := repository.NewCartRepository(store, testKey)

	svc := NewCartService(&fakeCatalog{}, repo, &recordingNotifier{})
	if err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	if len(svc.Cart()) != 0 {
		t.Fatal("expected empty cart after failed load")
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t, []model.Product{{ID: 1, Price: 10, Amount: 2}, {ID: 2, Price: 5, Amount: 1}}, nil)

	s := f.svc.Summary()
	if s.Size != 2 || s.Units != 3 || s.Total != 25 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	const n = 50
	f := newFixture(t, nil, map[int]int{1: n})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.AddProduct(ctx, 1)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := amounts(f.svc.Cart()); got[1] != n || len(got) != 1 {
		t.Fatalf("expected one entry with amount %d, got %v", n, got)
	}
	if got := amounts(f.persisted(t)); got[1] != n {
		t.Fatalf("expected persisted amount %d, got %v", n, got)
	}
	if f.catalog.productCalls != 1 {
		t.Errorf("expected product details fetched once, got %d", f.catalog.productCalls)
	}

	if err := f.svc.AddProduct(ctx, 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock past %d, got %v", n, err)
	}
}
