package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/tradeledger/backend/src/config"
	"github.com/username/tradeledger/backend/src/database"
	"github.com/username/tradeledger/backend/src/handlers"
	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/services"
	"github.com/username/tradeledger/backend/src/store"
	"golang.org/x/time/rate"
)

var limiter *rate.Limiter

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool)
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Trade ledger backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	if err := store.NewBrokerStore().Seed(database.DB); err != nil {
		stdlog.Fatalf("failed to seed brokers: %v", err)
	}
	logger.L.Info("Broker fee schedule seeded.")

	limiter = rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	portfolioSync := services.NewFilePortfolioSync(config.Cfg.PortfolioDataDir)
	ledgerService := services.NewLedgerService(database.DB, portfolioSync, reportCache)

	// Natural-language trade parsing is an external collaborator; the
	// endpoint answers 501 until an implementation is wired here.
	var tradeParser services.TradeParser

	tradeHandler := handlers.NewTradeHandler(ledgerService, tradeParser)
	pnlHandler := handlers.NewPnLHandler(ledgerService)
	statsHandler := handlers.NewStatsHandler(ledgerService)
	brokerHandler := handlers.NewBrokerHandler(database.DB)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Trade ledger backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/trades/{user}", func(r chi.Router) {
			r.Use(handlers.UserParamMiddleware)
			r.Get("/", tradeHandler.HandleListTrades)
			r.Post("/", tradeHandler.HandleCreateTrade)
			r.Delete("/{id}", tradeHandler.HandleDeleteTrade)
			r.Post("/parse", tradeHandler.HandleParseTrade)
		})

		r.With(handlers.UserParamMiddleware).Get("/pnl/{user}", pnlHandler.HandleGetPnL)
		r.With(handlers.UserParamMiddleware).Get("/stats/{user}", statsHandler.HandleGetStats)
		r.With(handlers.UserParamMiddleware).Post("/recalculate/{user}", tradeHandler.HandleRecalculateAll)

		r.Get("/brokers", brokerHandler.HandleListBrokers)
		r.Post("/brokers/calculate-fee", brokerHandler.HandleCalculateFee)
		r.With(handlers.UserParamMiddleware).Get("/brokers/user/{user}/default", brokerHandler.HandleGetDefaultBroker)
		r.With(handlers.UserParamMiddleware).Put("/brokers/user/{user}/default", brokerHandler.HandleSetDefaultBroker)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  config.Cfg.ReadTimeout,
		WriteTimeout: config.Cfg.WriteTimeout,
		IdleTimeout:  config.Cfg.IdleTimeout,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
