package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmorales-dev/localchat-backend/api/controllers"
	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/internal/admin"
	"github.com/nmorales-dev/localchat-backend/internal/audit"
	"github.com/nmorales-dev/localchat-backend/internal/auth"
	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/internal/chat"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"github.com/nmorales-dev/localchat-backend/pkg/metrics"
	"github.com/nmorales-dev/localchat-backend/pkg/ollama"
	"github.com/nmorales-dev/localchat-backend/pkg/redis"
)

// Deps bundles everything the router mounts. cmd/api builds one of these at
// startup.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	IdentityDB  db.Pinger
	SecurityDB  db.Pinger
	AdminDB     db.Pinger
	Redis       *redis.Client
	Runtime     *ollama.Client
	Sessions    *session.Manager
	Catalog     *catalog.Catalog
	AuthService auth.Service
	Accounts    controllers.ProfileAccounts
	ChatRepo    *chat.Repository
	ChatService *chat.Service
	AdminPanel  *admin.Service
	Resolver    tenant.ChatUUIDResolver
	Provisioner *tenant.Provisioner
	Recorder    *audit.Recorder
	HTTPMetrics *metrics.HTTPMetrics
}

// NewRouter assembles the full HTTP surface: public health and auth
// endpoints, the authenticated chat API, and the admin panel.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.ErrorAudit(deps.Recorder, deps.Resolver),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.LoginRL.Window,
		cfg.LoginRL.IPLimit,
		cfg.LoginRL.UsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.IdentityDB, deps.SecurityDB, deps.AdminDB, deps.Redis, deps.Runtime))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/models", func(r chi.Router) {
			r.Get("/", controllers.ModelsList(deps.Catalog, deps.Sessions, logg))
			r.Post("/select", controllers.ModelSelect(deps.Catalog, deps.Sessions, deps.Runtime, logg))
		})

		r.With(middleware.RejectRole(enums.RoleRestricted, logg)).
			Get("/settings", controllers.SettingsGet(deps.Catalog, deps.Sessions, deps.Accounts, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Accounts, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Accounts, logg))
			r.Post("/password", controllers.PasswordChange(deps.AuthService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.TenantScope(deps.Resolver, deps.Provisioner, logg))

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", controllers.ConversationsList(deps.ChatRepo, logg))
				r.Post("/", controllers.ConversationCreate(deps.ChatRepo, logg))
				r.Put("/{conversationId}", controllers.ConversationRename(deps.ChatRepo, logg))
				r.Delete("/{conversationId}", controllers.ConversationDelete(deps.ChatRepo, logg))
				r.Get("/{conversationId}/messages", controllers.ConversationMessages(deps.ChatRepo, logg))
			})

			// Restricted accounts may chat; the catalog deny-list bounds
			// which models they can select.
			r.Post("/chat", controllers.ChatSubmit(deps.ChatService, deps.Sessions, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Get("/accounts", controllers.AdminAccountsList(deps.AdminPanel, logg))
		r.Post("/accounts/{accountId}/role", controllers.AdminAccountRoleUpdate(deps.AdminPanel, logg))
	})

	return r
}
