// Package http exposes the REST API: pasanaco groups with their payment
// schedules, the expense and income book, accounts, loans and savings plans.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
	"finanzas/internal/middleware"
	"finanzas/internal/scheduler"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// Exporter pushes a group's cycle matrix to an external sheet.
type Exporter interface {
	ExportCycleMatrix(ctx context.Context, g core.Group, rows []scheduler.ParticipantRow) error
}

type Server struct {
	httpServer *http.Server
	store      storage.Store
	payments   *services.PaymentService
	rounds     *services.RoundProcessor
	exporter   Exporter
	metrics    *metrics.Metrics
	limiter    *middleware.RateLimiter

	summaryCache *cache.LRU[core.MonthSummary]
	sweepStop    chan struct{}

	shutdownOnce sync.Once
}

func NewServer(addr string, store storage.Store, payments *services.PaymentService, rounds *services.RoundProcessor, exporter Exporter, m *metrics.Metrics, cacheTTL time.Duration) *Server {
	s := &Server{
		store:        store,
		payments:     payments,
		rounds:       rounds,
		exporter:     exporter,
		metrics:      m,
		limiter:      middleware.NewRateLimiter(120),
		summaryCache: cache.NewLRU[core.MonthSummary](64, cacheTTL),
		sweepStop:    make(chan struct{}),
	}
	if m != nil {
		s.limiter.OnLimited = m.RateLimited.Inc
	}
	go s.sweepCache(cacheTTL)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Trace(s.observe))
	r.Use(middleware.SecurityHeaders)
	r.Use(s.limiter.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Get("/", s.handleListGroups)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Delete("/", s.handleDeleteGroup)
				r.Get("/status", s.handleGroupStatus)
				r.Get("/current-round", s.handleCurrentRound)
				r.Get("/cycle", s.handleGroupCycle)
				r.Post("/advance", s.handleAdvanceRound)
				r.Post("/export", s.handleExportCycle)

				r.Post("/participants", s.handleCreateParticipant)
				r.Get("/participants", s.handleListParticipants)
				r.Delete("/participants/{participantID}", s.handleDeleteParticipant)

				r.Get("/payments", s.handleListPayments)
				r.Post("/payments/generate", s.handleGeneratePayments)
				r.Post("/payments/{paymentID}/pay", s.handleMarkPaid)
			})
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", s.handleCreateExpense)
			r.Get("/", s.handleListExpenses)
			r.Delete("/{expenseID}", s.handleDeleteExpense)
		})
		r.Route("/incomes", func(r chi.Router) {
			r.Post("/", s.handleCreateIncome)
			r.Get("/", s.handleListIncomes)
			r.Delete("/{incomeID}", s.handleDeleteIncome)
		})
		r.Get("/summary", s.handleMonthSummary)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleCreateAccount)
			r.Get("/", s.handleListAccounts)
			r.Get("/{accountID}", s.handleGetAccount)
			r.Get("/{accountID}/transactions", s.handleListTransactions)
			r.Post("/{accountID}/deposit", s.handleDeposit)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Post("/", s.handleCreateLoan)
			r.Get("/", s.handleListLoans)
			r.Get("/{loanID}", s.handleGetLoan)
			r.Get("/{loanID}/schedule", s.handleLoanSchedule)
		})

		r.Route("/savings", func(r chi.Router) {
			r.Post("/", s.handleCreateSavingsPlan)
			r.Get("/", s.handleListSavingsPlans)
			r.Post("/{planID}/deposit", s.handleSavingsDeposit)
		})
	})

	return r
}

func (s *Server) observe(method, path string, status int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.metrics.HTTPDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListGroups(r.Context()); err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.sweepStop)
		s.limiter.Stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// sweepCache drops expired summary entries in the background so memory does
// not grow with months that are no longer requested.
func (s *Server) sweepCache(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.summaryCache.CleanExpired()
		case <-s.sweepStop:
			return
		}
	}
}
