// Package http exposes the ledger as a JSON API. Handlers decode and
// validate the wire shape, then delegate to the services; all policy and
// ownership decisions live below this layer.
package http

import (
	"net"
	"net/http"
	"time"

	applog "tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
)

// Server bundles the service dependencies behind the route table.
type Server struct {
	accounts   *services.AccountService
	categories *services.CategoryService
	sources    *services.SourceService
	expenses   *services.ExpenseService
	incomes    *services.IncomeService
	summaries  *services.SummaryService
	jwtSecret  []byte
}

// Deps carries everything NewServer needs.
type Deps struct {
	Accounts   *services.AccountService
	Categories *services.CategoryService
	Sources    *services.SourceService
	Expenses   *services.ExpenseService
	Incomes    *services.IncomeService
	Summaries  *services.SummaryService
	JWTSecret  []byte
	Logger     *applog.Logger

	// LoginLimiter throttles the unauthenticated endpoints when set.
	LoginLimiter *ratelimit.Limiter
}

// NewServer builds the configured *http.Server. Middleware order is fixed:
// request logging, panic recovery, then per-route authentication.
func NewServer(addr string, deps Deps) *http.Server {
	s := &Server{
		accounts:   deps.Accounts,
		categories: deps.Categories,
		sources:    deps.Sources,
		expenses:   deps.Expenses,
		incomes:    deps.Incomes,
		summaries:  deps.Summaries,
		jwtSecret:  deps.JWTSecret,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)

	var register http.Handler = http.HandlerFunc(s.handleRegister)
	var login http.Handler = http.HandlerFunc(s.handleLogin)
	if deps.LoginLimiter != nil {
		throttle := deps.LoginLimiter.Middleware(clientIP, onRateLimited)
		register = throttle(register)
		login = throttle(login)
	}
	mux.Handle("POST /users/register", register)
	mux.Handle("POST /auth/login", login)

	mux.Handle("GET /users", s.authed(s.handleListAccounts))
	mux.Handle("GET /users/{id}", s.authed(s.handleGetAccount))
	mux.Handle("PATCH /users/{id}", s.authed(s.handleUpdateAccount))
	mux.Handle("DELETE /users/{id}", s.authed(s.handleDeleteAccount))

	mux.Handle("POST /categories", s.authed(s.handleCreateCategory))
	mux.Handle("GET /categories", s.authed(s.handleListCategories))
	mux.Handle("PATCH /categories/{id}", s.authed(s.handleUpdateCategory))
	mux.Handle("DELETE /categories/{id}", s.authed(s.handleDeleteCategory))

	mux.Handle("POST /sources", s.authed(s.handleCreateSource))
	mux.Handle("GET /sources", s.authed(s.handleListSources))
	mux.Handle("PATCH /sources/{id}", s.authed(s.handleUpdateSource))
	mux.Handle("DELETE /sources/{id}", s.authed(s.handleDeleteSource))

	mux.Handle("POST /expenses", s.authed(s.handleCreateExpense))
	mux.Handle("GET /expenses", s.authed(s.handleListExpenses))
	mux.Handle("PATCH /expenses/{id}", s.authed(s.handleUpdateExpense))
	mux.Handle("DELETE /expenses/{id}", s.authed(s.handleDeleteExpense))

	mux.Handle("POST /incomes", s.authed(s.handleCreateIncome))
	mux.Handle("GET /incomes", s.authed(s.handleListIncomes))
	mux.Handle("PATCH /incomes/{id}", s.authed(s.handleUpdateIncome))
	mux.Handle("DELETE /incomes/{id}", s.authed(s.handleDeleteIncome))

	mux.Handle("GET /summary", s.authed(s.handleCombinedSummary))
	mux.Handle("GET /summary/expenses", s.authed(s.handleExpenseSummary))
	mux.Handle("GET /summary/incomes", s.authed(s.handleIncomeSummary))

	var handler http.Handler = mux
	handler = recovery(handler)
	handler = requestLog(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.Middleware(handler)
	if deps.Logger != nil {
		handler = applog.Middleware(deps.Logger)(handler)
	}

	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientIP keys rate limiting by remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func onRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorBody("too many requests"))
}
