package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	voxa "github.com/voxa-app/voxa-api"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions SessionManager // Required
	Accounts AccountCreator // Optional: nil disables sign-up
	Upgrades Upgrader       // Optional: nil disables plan endpoints
	Health   map[string]HealthCheck
	// Observability
	Metrics        *metrics.Collector // Optional: per-route request metrics
	MetricsHandler http.Handler       // Optional: served on /metrics
	// AuthLimiter throttles /api/auth routes per client IP (optional).
	AuthLimiter *RateLimiter
	Cookies     CookieOptions
	Checkout    CheckoutView
	// TemplateFS overrides where page templates are read from (tests).
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for template hot reloading
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// router registers instrumented routes on a ServeMux.
type router struct {
	mux     *http.ServeMux
	metrics *metrics.Collector
}

func (rt router) handle(pattern string, h http.Handler) {
	rt.mux.Handle(pattern, Instrument(rt.metrics, pattern)(h))
}

func (rt router) handleFunc(pattern string, h http.HandlerFunc) {
	rt.handle(pattern, h)
}

// NewRouter creates and configures a new HTTP router with browser middleware.
// Every request carries the resolved principal in its context.
func NewRouter(services RouterServices) http.Handler {
	if services.Sessions == nil {
		panic("httpx: NewRouter requires Sessions")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := router{mux: http.NewServeMux(), metrics: services.Metrics}

	registerAuthRoutes(rt, &AuthHandlers{
		Sessions: services.Sessions,
		Accounts: services.Accounts,
		Cookies:  services.Cookies,
		Logger:   logger,
	}, services.AuthLimiter)

	if services.Upgrades != nil {
		registerPlanRoutes(rt, &PlanHandlers{Upgrades: services.Upgrades, Logger: logger})
	}

	health := &HealthHandlers{Checks: services.Health}
	rt.handleFunc("GET /healthz", health.Health)
	rt.handleFunc("HEAD /healthz", health.Health)
	if services.MetricsHandler != nil {
		rt.mux.Handle("GET /metrics", services.MetricsHandler)
	}

	pages := setupPageHandlers(services, logger)
	if pages != nil {
		registerPageRoutes(rt, pages)
	}
	rt.mux.HandleFunc("/", pages.NotFound)

	handler := ResolvePrincipal(services.Sessions)(rt.mux)
	return BrowserDetection()(handler)
}

// setupPageHandlers creates page handlers with a template renderer.
// In dev mode templates are loaded from disk for hot reloading; otherwise from the embedded FS.
func setupPageHandlers(services RouterServices, logger *slog.Logger) *PageHandlers {
	templateFS := services.TemplateFS
	if templateFS == nil {
		templateFS = defaultTemplateFS(services.IsDev, logger)
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create template renderer; pages disabled", slog.Any("error", err))
		return nil
	}
	return &PageHandlers{T: tr, CheckoutView: services.Checkout, Logger: logger}
}

//nolint:ireturn // both branches yield different fs.FS implementations
func defaultTemplateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(voxa.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("failed to open embedded templates; falling back to disk", slog.Any("error", err))
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

func registerAuthRoutes(rt router, h *AuthHandlers, limiter *RateLimiter) {
	limit := func(hf http.HandlerFunc) http.Handler {
		if limiter == nil {
			return hf
		}
		return limiter.Middleware()(hf)
	}

	if h.Accounts != nil {
		rt.handle("POST /api/auth/sign-up", limit(h.SignUp))
	}
	rt.handle("POST /api/auth/sign-in", limit(h.SignIn))
	rt.handle("POST /api/auth/logout", limit(h.Logout))
	rt.handleFunc("GET /api/auth/me", h.Me)
}

func registerPlanRoutes(rt router, h *PlanHandlers) {
	rt.handleFunc("POST /api/update-plan", h.UpdatePlan)
	rt.handle("POST /api/create-payment-intent", RequireAuthenticated()(http.HandlerFunc(h.CreatePaymentIntent)))
	rt.handle("POST /api/interviews/premium", GatePremium()(http.HandlerFunc(h.PremiumInterview)))
}

func registerPageRoutes(rt router, h *PageHandlers) {
	protected := RequireAuthenticatedPage()

	rt.handle("GET /{$}", protected(http.HandlerFunc(h.Home)))
	rt.handle("GET /interview", protected(http.HandlerFunc(h.Interview)))
	rt.handle("GET /stripe", protected(http.HandlerFunc(h.Checkout)))
	rt.handle("GET /payment-success", protected(http.HandlerFunc(h.PaymentSuccess)))

	rt.handleFunc("GET /sign-in", h.SignIn)
	rt.handleFunc("GET /sign-up", h.SignUp)
}
