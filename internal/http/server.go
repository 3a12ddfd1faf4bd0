package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"brokemate/internal/core"
	applog "brokemate/internal/log"
	"brokemate/internal/middleware/ratelimit"
	"brokemate/internal/middleware/security"
	"brokemate/internal/middleware/trace"
	"brokemate/internal/services"
)

// RecurringRunner materializes the due subscriptions of one user.
type RecurringRunner interface {
	ProcessUser(ctx context.Context, userID string, today core.Date) (int, error)
}

// Config holds the server settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	// OverviewCache memoizes month overviews; nil disables caching.
	OverviewCache *OverviewCache
	Logger        *applog.Logger
}

// Services are the application services behind the routes. Assistant and
// Recurring may be nil; their routes then answer 503.
type Services struct {
	Finance   *services.FinanceService
	Profiles  *services.ProfileService
	Assistant *services.AssistantService
	Recurring RecurringRunner
}

type Server struct {
	http.Server

	finance   *services.FinanceService
	profiles  *services.ProfileService
	assistant *services.AssistantService
	recurring RecurringRunner

	overviewCache *OverviewCache
	logger        *applog.Logger
	events        *applog.StructuredLogger
	limiter       *ratelimit.Limiter
	detector      *security.Detector
	tracer        *trace.Middleware

	shutdownOnce sync.Once
}

// OverviewInvalidator returns a change hook that drops the cached overviews
// of a user.
func OverviewInvalidator(c *OverviewCache) services.ChangeHook {
	return c.Invalidate
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(cfg Config, svc Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentHTTP})
	}

	s := &Server{
		finance:       svc.Finance,
		profiles:      svc.Profiles,
		assistant:     svc.Assistant,
		recurring:     svc.Recurring,
		overviewCache: cfg.OverviewCache,
		logger:        logger,
		events:        applog.NewStructuredLogger(logger),
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:      security.NewDetector(),
	}
	if s.assistant == nil {
		// Without an adapter every assistant route reports ErrAssistantUnavailable.
		s.assistant = services.NewAssistantService(nil, svc.Finance, 0)
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.events)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimit)(h)
	h = applog.RequestIDMiddleware(trace.RequestID)(h)
	h = applog.Middleware(logger)(h)
	h = s.tracer.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Assistant calls may take up to the assistant timeout.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /api/profiles", s.handleRegisterProfile)
	mux.HandleFunc("GET /api/profiles/{id}", s.handleGetProfile)
	mux.HandleFunc("POST /api/profiles/{id}/login", s.handleLogin)

	const u = "/api/users/{userID}"
	mux.HandleFunc("GET "+u+"/state", s.handleState)
	mux.HandleFunc("PUT "+u+"/preferences/dark-mode", s.handleDarkMode)

	mux.HandleFunc("GET "+u+"/categories", s.handleListCategories)
	mux.HandleFunc("POST "+u+"/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE "+u+"/categories/{label}", s.handleRemoveCategory)

	mux.HandleFunc("GET "+u+"/transactions", s.handleListTransactions)
	mux.HandleFunc("POST "+u+"/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE "+u+"/transactions/{id}", s.handleRemoveTransaction)
	mux.HandleFunc("POST "+u+"/receipts", s.handleScanReceipt)
	mux.HandleFunc("GET "+u+"/overview", s.handleOverview)

	mux.HandleFunc("GET "+u+"/budgets", s.handleBudgets)
	mux.HandleFunc("PUT "+u+"/budgets", s.handleSetBudget)
	mux.HandleFunc("DELETE "+u+"/budgets/{id}", s.handleRemoveBudget)

	mux.HandleFunc("GET "+u+"/goals", s.handleListGoals)
	mux.HandleFunc("POST "+u+"/goals", s.handleCreateGoal)
	mux.HandleFunc("POST "+u+"/goals/{id}/contributions", s.handleContribute)
	mux.HandleFunc("POST "+u+"/goals/{id}/advice", s.handleGoalAdvice)

	mux.HandleFunc("GET "+u+"/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST "+u+"/subscriptions", s.handleAddSubscription)
	mux.HandleFunc("POST "+u+"/subscriptions/{id}/toggle", s.handleToggleSubscription)
	mux.HandleFunc("DELETE "+u+"/subscriptions/{id}", s.handleRemoveSubscription)
	mux.HandleFunc("POST "+u+"/recurring/run", s.handleRunRecurring)

	mux.HandleFunc("GET "+u+"/tasks", s.handleListTasks)
	mux.HandleFunc("POST "+u+"/tasks", s.handleAddTask)
	mux.HandleFunc("POST "+u+"/tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("DELETE "+u+"/tasks/{id}", s.handleRemoveTask)
	mux.HandleFunc("POST "+u+"/tasks/prioritize", s.handlePrioritize)
	mux.HandleFunc("POST "+u+"/tasks/workflow", s.handleWorkflow)

	mux.HandleFunc("GET "+u+"/schedule", s.handleSchedule)
	mux.HandleFunc("PUT "+u+"/schedule", s.handleReplaceSchedule)
	mux.HandleFunc("PUT "+u+"/schedule/{id}", s.handleUpdateTimeBlock)
	mux.HandleFunc("DELETE "+u+"/schedule/{id}", s.handleRemoveTimeBlock)
	mux.HandleFunc("POST "+u+"/schedule/generate", s.handleGenerateSchedule)

	mux.HandleFunc("POST "+u+"/insights", s.handleInsights)
	mux.HandleFunc("POST "+u+"/chat", s.handleChat)
	mux.HandleFunc("DELETE "+u+"/assistant/{view}", s.handleCancelAssistant)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics reports request, rate limit and detection counters.
type Metrics struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady probes the profile partition of the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.profiles.List(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
		ErrorResponse(http.StatusServiceUnavailable, applog.ErrorTypeDatabase, "storage unavailable").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "metrics": s.Metrics()})
}
