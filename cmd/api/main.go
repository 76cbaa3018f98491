package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kmehta/loantrack/pkg/config"
	"github.com/kmehta/loantrack/pkg/ledger"
	"github.com/kmehta/loantrack/pkg/models"
	"github.com/kmehta/loantrack/pkg/stats"
	"github.com/kmehta/loantrack/pkg/store"
)

// Server holds the ledger instance and its collaborators.
type Server struct {
	ledger  *ledger.Ledger
	storage store.Storage // kept so callers can close it
	log     *logrus.Logger
}

func NewServer(s store.Storage, log *logrus.Logger) *Server {
	return &Server{
		ledger:  ledger.NewLedger(s, log),
		storage: s,
		log:     log,
	}
}

// loanView pairs a loan record with its computed stats for API responses.
type loanView struct {
	models.Loan
	Stats stats.LoanStats `json:"stats"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrLoanNotFound):
		http.Error(w, "Loan not found", http.StatusNotFound)
	case models.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.WithError(err).Error("request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.Loans()
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]loanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, loanView{Loan: loan, Stats: stats.Compute(loan)})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string           `json:"name"`
		TotalAmount  decimal.Decimal  `json:"total_amount"`
		MonthlyEMI   decimal.Decimal  `json:"monthly_emi"`
		TenureMonths int              `json:"tenure_months"`
		StartMonth   models.YearMonth `json:"start_month"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := s.ledger.AddLoan(req.Name, req.TotalAmount, req.MonthlyEMI, req.TenureMonths, req.StartMonth)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, loanView{Loan: loan, Stats: stats.Compute(loan)})
}

func (s *Server) getLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	loan, err := s.ledger.Loan(loanID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loanView{Loan: loan, Stats: stats.Compute(loan)})
}

func (s *Server) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	// Deletion is irreversible, so the API demands explicit confirmation.
	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "Deletion requires confirm=true", http.StatusBadRequest)
		return
	}

	if err := s.ledger.DeleteLoan(loanID); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPaymentHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount decimal.Decimal  `json:"amount"`
		Date   models.YearMonth `json:"date"`
		Note   string           `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, err := s.ledger.AddPayment(loanID, req.Amount, req.Date, req.Note)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, loanView{Loan: loan, Stats: stats.Compute(loan)})
}

func (s *Server) portfolioHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.Loans()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats.Aggregate(loans))
}

func (s *Server) emiShareHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.Loans()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats.Partition(loans))
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/loans", s.listLoansHandler).Methods("GET")
	router.HandleFunc("/loans", s.createLoanHandler).Methods("POST")
	router.HandleFunc("/loans/{id}", s.getLoanHandler).Methods("GET")
	router.HandleFunc("/loans/{id}", s.deleteLoanHandler).Methods("DELETE")
	router.HandleFunc("/loans/{id}/payments", s.addPaymentHandler).Methods("POST")
	router.HandleFunc("/portfolio", s.portfolioHandler).Methods("GET")
	router.HandleFunc("/portfolio/emi-share", s.emiShareHandler).Methods("GET")

	return router
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	server := NewServer(sqliteStore, logger)

	// Snapshots written before completion stamping existed get stamped on
	// startup, then again on schedule.
	if err := server.ledger.StampCompletions(); err != nil {
		logger.WithError(err).Error("completion sweep failed")
	}
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := server.ledger.StampCompletions(); err != nil {
			logger.WithError(err).Error("completion sweep failed")
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule completion sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Starting server on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
