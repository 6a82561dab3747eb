package model

// Product is a catalog item. Inside a cart, Amount holds the selected quantity.
type Product struct {
	ID     int     `json:"id" bson:"_id"`
	Title  string  `json:"title" bson:"title"`
	Price  float64 `json:"price" bson:"price"`
	Image  string  `json:"image" bson:"image"`
	Amount int     `json:"amount,omitempty" bson:"-"`
}

// Stock is the purchasable quantity reported by the catalog for a product.
type Stock struct {
	ID     int `json:"id" bson:"_id"`
	Amount int `json:"amount" bson:"amount"`
}

// Catalog is the seed file layout served by the catalog server.
type Catalog struct {
	Products []Product `json:"products"`
	Stock    []Stock   `json:"stock"`
}
