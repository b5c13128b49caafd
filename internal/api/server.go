// Package api exposes the simulator over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/simchain/internal/logger"
	"github.com/Mohsinsiddi/simchain/internal/sim"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the JSON API for one simulator.
type Server struct {
	sim          *sim.Simulator
	validate     *validator.Validate
	historyLimit int
	router       chi.Router
}

// New builds the router. historyLimit caps transaction listings when the
// request does not ask for a limit.
func New(s *sim.Simulator, historyLimit int) *Server {
	srv := &Server{
		sim:          s,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		historyLimit: historyLimit,
	}
	srv.router = srv.routes()
	return srv
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/chains", func(r chi.Router) {
		r.Get("/", s.listChains)
		r.Get("/{chain}/fees", s.chainFees)
	})

	r.Get("/catalog", s.listCatalog)
	r.Get("/wallets", s.listAllWallets)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/", s.createUser)

		r.Route("/{user}", func(r chi.Router) {
			r.Get("/wallets", s.listWallets)
			r.Post("/wallets", s.createWallet)
			r.Get("/balances", s.balances)
			r.Get("/transactions", s.transactions)

			r.Route("/wallets/{wallet}", func(r chi.Router) {
				r.Post("/onramp", s.onRamp)
				r.Post("/offramp", s.offRamp)
				r.Post("/send", s.send)
				r.Post("/contract", s.contractCall)
				r.Post("/nfts", s.mint)
				r.Post("/nfts/{token}/transfer", s.transferNFT)
				r.Post("/nfts/{token}/burn", s.burn)
				r.Post("/market", s.listForSale)
			})
		})
	})

	r.Route("/nfts", func(r chi.Router) {
		r.Get("/", s.listNFTs)
		r.Get("/{token}", s.getNFT)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/", s.listMarket)
		r.Get("/{token}", s.getListing)
		r.Delete("/{token}", s.delist)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("api: listening", zap.String("addr", addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("api: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Log.Info("api: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}
