package router

import (
	"net/http"

	"fabmarket/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)
	mux.HandleFunc("GET /api/orders", c.GetOrders)
	mux.HandleFunc("POST /api/orders/new", c.NewOrder)
	mux.HandleFunc("GET /api/orders/my", c.MyOrders)
	mux.HandleFunc("GET /api/orders/accepted", c.AcceptedOrders)
	mux.HandleFunc("GET /api/orders/{orderId}", c.GetOrder)
	mux.HandleFunc("POST /api/orders/{orderId}/bids", c.NewBid)
	mux.HandleFunc("POST /api/orders/{orderId}/accept", c.AcceptOrder)
	mux.HandleFunc("PUT /api/orders/{orderId}/status", c.SetOrderStatus)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id")
		w.Header().Set("Accept", "*/*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}
