package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/batch"
	"github.com/crawlingsloth/lonumirus/internal/boat"
	"github.com/crawlingsloth/lonumirus/internal/order"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type Services struct {
	Auth    auth.Service
	Users   user.Service
	Boats   boat.Service
	Orders  order.Service
	Batches batch.Service
	Tokens  *auth.TokenManager
}

func NewRouter(s Services) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(auth.Middleware(s.Tokens))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	NewAuthHandler(s.Auth).RegisterRoutes(r)
	NewUserHandler(s.Users).RegisterRoutes(r)
	NewBoatHandler(s.Boats).RegisterRoutes(r)
	NewOrderHandler(s.Orders).RegisterRoutes(r)
	NewBatchHandler(s.Batches).RegisterRoutes(r)

	return r
}
