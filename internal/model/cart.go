package model

type UpdateProductAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}

type CartLine struct {
	Product
	Subtotal float64 `json:"subtotal"`
}

type CartSummary struct {
	Items []CartLine `json:"items"`
	Size  int        `json:"size"`
	Units int        `json:"units"`
	Total float64    `json:"total"`
}

// Summarize computes line subtotals and totals for the given cart entries.
func Summarize(cart []Product) CartSummary {
	summary := CartSummary{
		Items: make([]CartLine, 0, len(cart)),
		Size:  len(cart),
	}
	for _, p := range cart {
		line := CartLine{Product: p, Subtotal: p.Price * float64(p.Amount)}
		summary.Items = append(summary.Items, line)
		summary.Units += p.Amount
		summary.Total += line.Subtotal
	}
	return summary
}

// CloneCart returns a copy of cart that can be mutated without touching the original.
func CloneCart(cart []Product) []Product {
	out := make([]Product, len(cart))
	copy(out, cart)
	return out
}

// IndexOf returns the position of productID in cart, or -1.
func IndexOf(cart []Product, productID int) int {
	for i := range cart {
		if cart[i].ID == productID {
			return i
		}
	}
	return -1
}
