package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/handlers"
	custommiddleware "github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/middleware"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/config"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// Services bundles the service-layer dependencies the router wires into
// handlers.
type Services struct {
	System      *service.SystemService
	Asset       *service.AssetService
	Target      *service.TargetService
	Wallet      *service.WalletService
	Transaction *service.TransactionService
	Report      *service.ReportService
	Price       *service.PriceService
	Dip         *service.DipService
	Setting     *service.SettingService
	FeedClient  *pricefeed.HTTPClient
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		assetHandler := handlers.NewAssetHandler(svc.Asset)
		targetHandler := handlers.NewTargetHandler(svc.Target)
		walletHandler := handlers.NewWalletHandler(svc.Wallet)
		transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
		reportHandler := handlers.NewReportHandler(svc.Report)
		priceHandler := handlers.NewPriceHandler(svc.Price)

		r.Route("/asset", func(r chi.Router) {
			r.Get("/", assetHandler.Assets)
			r.Post("/", assetHandler.CreateAsset)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", assetHandler.GetAsset)
				r.Put("/", assetHandler.UpdateAsset)
				r.Delete("/", assetHandler.DeleteAsset)

				r.Get("/entry-target", targetHandler.EntryTargets)
				r.Get("/profit-target", targetHandler.ProfitTargets)
				r.Get("/wallet", walletHandler.WalletsPerAsset)
				r.Get("/transaction", transactionHandler.TransactionsPerAsset)

				r.Get("/price", priceHandler.Prices)
				r.Get("/quote", priceHandler.Quote)
				r.Post("/price/update", priceHandler.UpdatePrice)
				r.Post("/price/history", priceHandler.BackfillHistory)
			})
		})

		r.Route("/entry-target", func(r chi.Router) {
			r.Post("/", targetHandler.CreateEntryTarget)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Put("/", targetHandler.UpdateEntryTarget)
				r.Delete("/", targetHandler.DeleteEntryTarget)
			})
		})

		r.Route("/profit-target", func(r chi.Router) {
			r.Post("/", targetHandler.CreateProfitTarget)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Put("/", targetHandler.UpdateProfitTarget)
				r.Delete("/", targetHandler.DeleteProfitTarget)
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.Wallets)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", walletHandler.GetWallet)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			r.Get("/", transactionHandler.Transactions)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Put("/", transactionHandler.UpdateTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/report", func(r chi.Router) {
			r.Get("/overview", reportHandler.Overview)
			r.Route("/asset/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", reportHandler.AssetDashboard)
			})
		})

		dipHandler := handlers.NewDipHandler(svc.Dip)
		r.Get("/dip/{symbol}", dipHandler.Analyze)

		// Internal endpoints guarded by the API key + time token
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)

			r.Post("/price/refresh", priceHandler.RefreshAll)

			settingHandler := handlers.NewSettingHandler(svc.Setting, svc.FeedClient)
			r.Put("/setting/feed-key", settingHandler.SetFeedKey)
			r.Get("/setting/feed-key", settingHandler.FeedKeyStatus)
		})
	})

	return r
}
