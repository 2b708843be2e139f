package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/adledger/internal/api/handlers"
	"github.com/baharkarakas/adledger/internal/auth"
	"github.com/baharkarakas/adledger/internal/config"
	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/middleware"
	"github.com/baharkarakas/adledger/internal/notify"
	"github.com/baharkarakas/adledger/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	Tokens     *auth.TokenManager
	Users      *services.UserService
	Balances   *services.BalanceService
	Ledger     *services.LedgerService
	Orders     *services.OrderService
	Payments   *services.PaymentService
	Banners    *services.BannerService
	Moderation *services.ModerationService
	Stats      *services.StatsService
	Notifier   *notify.Notifier
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	am := middleware.NewAuthMiddleware(d.Tokens, d.Cfg.Env)
	authH := handlers.NewAuthHandler(d.Tokens, d.Cfg.Env)
	users := &handlers.UserHandler{Svc: d.Users}
	banners := &handlers.BannerHandler{Svc: d.Banners}
	charges := &handlers.ChargeHandler{Svc: d.Payments}
	ledger := &handlers.LedgerHandler{Ledger: d.Ledger, Balances: d.Balances, Orders: d.Orders}
	notes := &handlers.NotificationHandler{N: d.Notifier}
	dist := &handlers.DistributionHandler{Svc: d.Moderation}
	stats := &handlers.StatsHandler{Svc: d.Stats}

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- public ----------
		r.Post("/auth/token", authH.Token)
		r.Post("/auth/refresh", authH.Refresh)
		r.Get("/banners/{place}", banners.Pick)

		// ---------- signed in ----------
		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			r.Get("/users/me", users.Me)
			r.Get("/balances/current", ledger.Balance)
			r.Get("/ledger", ledger.List)
			r.Post("/orders", ledger.PlaceOrder)

			r.Post("/charges", charges.Create)
			r.Get("/charges/{id}", charges.Get)
			r.With(middleware.RequireRole(auth.RoleGateway, auth.RoleAdmin)).
				Post("/charges/{id}/complete", charges.Complete)

			r.Post("/distributions", dist.Submit)

			r.Get("/notifications", notes.List)
			r.Get("/notifications/unread", notes.Unread)
			r.Post("/notifications/{id}/read", notes.MarkRead)
		})

		// ---------- admin ----------
		r.Route("/admin", func(r chi.Router) {
			r.Use(am.Auth, middleware.RequireRole(auth.RoleAdmin))

			r.Get("/users", users.List)
			r.Post("/users", users.Register)
			r.Post("/balance-adjustments", ledger.Adjust)
			r.Post("/repayments", ledger.Repay)
			r.Post("/distributions/{id}/moderate", dist.Moderate)
			r.Post("/banners/validate", banners.Validate)
			r.Get("/stats/payments", stats.Payments)
		})
	})

	return r
}
