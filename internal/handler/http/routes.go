package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterCartRoutes(r *mux.Router, cart *CartHandler, notifications *NotificationHandler, health *HealthHandler) {
	r.HandleFunc("/cart", cart.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/summary", cart.GetSummary).Methods(http.MethodGet)
	r.HandleFunc("/cart/products", cart.AddProduct).Methods(http.MethodPost)
	r.HandleFunc("/cart/products/{id:[0-9]+}", cart.UpdateProductAmount).Methods(http.MethodPut)
	r.HandleFunc("/cart/products/{id:[0-9]+}", cart.RemoveProduct).Methods(http.MethodDelete)
	r.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	r.HandleFunc("/healthz", health.Check).Methods(http.MethodGet)
}

func RegisterCatalogRoutes(r *mux.Router, catalog *CatalogHandler, health *HealthHandler) {
	r.HandleFunc("/products", catalog.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", catalog.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id}", catalog.GetStock).Methods(http.MethodGet)
	r.HandleFunc("/healthz", health.Check).Methods(http.MethodGet)
}
