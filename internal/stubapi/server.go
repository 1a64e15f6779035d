// Package stubapi is an in-memory implementation of the marketplace backend
// endpoints the client uses. It backs `carmarket stub` and the integration
// tests.
package stubapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/carmarket/carmarket/internal/api"
)

// DevCode is the verification code every SMS "contains".
const DevCode = "123456"

// ResendInterval throttles verification code sends per phone number.
const ResendInterval = 60 * time.Second

// Server holds the in-memory backend state.
type Server struct {
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger

	users        map[string]*user // by phone number
	codeSentAt   map[string]time.Time
	tickets      map[string]*api.Ticket
	transactions []*api.Transaction
	moderation   []*api.ModerationItem
	reports      []*api.Report
	activities   []api.Activity
	nextTxID     int64
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a server seeded with demo data.
func New(opts ...Option) *Server {
	s := &Server{
		now:        time.Now,
		logger:     slog.Default(),
		users:      make(map[string]*user),
		codeSentAt: make(map[string]time.Time),
		tickets:    make(map[string]*api.Ticket),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc(api.PathRegister, s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc(api.PathSendPhoneCode, s.handleSendCode).Methods(http.MethodPost)
	r.HandleFunc(api.PathVerifyPhone, s.handleVerifyPhone).Methods(http.MethodPost)
	r.HandleFunc(api.PathSendEmailCode, s.handleSendEmail).Methods(http.MethodPost)
	r.HandleFunc(api.PathResetPassword, s.handleResetPassword).Methods(http.MethodPost)

	r.HandleFunc(api.PathSupportTickets, s.handleCreateTicket).Methods(http.MethodPost)
	r.HandleFunc(api.PathSupportTickets+"/{id}", s.handleGetTicket).Methods(http.MethodGet)
	r.HandleFunc(api.PathCarAttributes, s.handleCarAttributes).Methods(http.MethodPost)

	r.HandleFunc(api.PathPayments, s.handleCreatePayment).Methods(http.MethodPost)
	r.HandleFunc(api.PathTransactions, s.handleListTransactions).Methods(http.MethodGet)
	r.HandleFunc(api.PathTransactions+"/{id:[0-9]+}/refund", s.handleRefund).Methods(http.MethodPost)

	r.HandleFunc(api.PathDashboard, s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc(api.PathModeration, s.handleListModeration).Methods(http.MethodGet)
	r.HandleFunc(api.PathModeration+"/{id:[0-9]+}", s.handleModerate).Methods(http.MethodPost)
	r.HandleFunc(api.PathReports, s.handleListReports).Methods(http.MethodGet)
	r.HandleFunc(api.PathReports+"/{id:[0-9]+}/resolve", s.handleResolveReport).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) record(action, who string) {
	s.activities = append([]api.Activity{{Action: action, UserName: who, CreatedDate: s.now().UTC()}}, s.activities...)
	if len(s.activities) > 20 {
		s.activities = s.activities[:20]
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

var errBadBody = errors.New("bad body")

// decode reads a JSON object body into v. Unknown fields are allowed.
func decode(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errBadBody
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errBadBody
	}
	return nil
}
