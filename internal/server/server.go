package server

import (
	"context"
	"net/http"
	"time"

	"fitclub/internal/account"
	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/booking"
	"fitclub/internal/config"
	"fitclub/internal/dashboard"
	"fitclub/internal/facility"
	"fitclub/internal/logger"
	"fitclub/internal/member"
	"fitclub/internal/notify"
	"fitclub/internal/trainer"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	DB        *sqlx.DB
	Config    *config.Config
	Locker    booking.Locker
	Publisher booking.EventPublisher
	Revoker   auth.Revoker
	// Mailer is nil when notifications are disabled.
	Mailer *notify.Service
}

type Server struct {
	router   *gin.Engine
	http     *http.Server
	config   *config.Config
	accounts account.Service
}

func New(deps Deps) *Server {
	cfg := deps.Config
	api.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	members := member.NewService(member.NewRepository(deps.DB), cfg.JWTSecret, cfg.JWTRefreshSecret)
	trainers := trainer.NewService(trainer.NewRepository(deps.DB), cfg.JWTSecret, cfg.JWTRefreshSecret)
	facilities := facility.NewService(facility.NewRepository(deps.DB))
	accounts := account.NewService(account.NewRepository(deps.DB), deps.Revoker, cfg.JWTSecret, cfg.JWTRefreshSecret)

	store := booking.NewRepository(deps.DB)
	opts := []booking.Option{}
	if deps.Publisher != nil {
		opts = append(opts, booking.WithPublisher(deps.Publisher))
	}
	if deps.Mailer != nil {
		opts = append(opts, booking.WithNotifier(notify.NewBookingNotifier(deps.Mailer, members)))
	}
	bookings := booking.NewService(store, deps.Locker, opts...)

	registerRoutes(router, deps, routeHandlers{
		member:    member.NewHandler(members),
		trainer:   trainer.NewHandler(trainers),
		facility:  facility.NewHandler(facilities),
		account:   account.NewHandler(accounts),
		booking:   booking.NewHandler(bookings),
		dashboard: dashboard.NewHandler(dashboard.NewService(store, nil)),
	})

	return &Server{
		router:   router,
		config:   cfg,
		accounts: accounts,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

type routeHandlers struct {
	member    *member.Handler
	trainer   *trainer.Handler
	facility  *facility.Handler
	account   *account.Handler
	booking   *booking.Handler
	dashboard *dashboard.Handler
}

func registerRoutes(router *gin.Engine, deps Deps, h routeHandlers) {
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	router.POST("/members/register", h.member.Register)
	router.POST("/trainers/register", h.trainer.Register)

	public := router.Group("/auth")
	{
		public.POST("/member-login", h.account.Login(auth.RoleMember))
		public.POST("/trainer-login", h.account.Login(auth.RoleTrainer))
		public.POST("/admin-login", h.account.Login(auth.RoleAdmin))
		public.POST("/refresh", h.account.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(deps.Config.JWTSecret, deps.Revoker)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.account.Me)
		protected.POST("/auth/logout", h.account.Logout)
		protected.GET("/classes", h.facility.ListClasses)

		m := protected.Group("/members/:memberID")
		m.GET("", h.member.GetProfile)
		m.GET("/dashboard", h.dashboard.GetMemberDashboard)
		m.POST("/health-metrics", h.member.AddHealthMetric)
		m.GET("/health-metrics", h.member.ListHealthMetrics)
		m.POST("/goals", h.member.AddGoal)
		m.GET("/goals", h.member.ListGoals)
		m.POST("/classes/register", h.booking.RegisterForClassByBody)
		m.POST("/classes/:classID/register", h.booking.RegisterForClass)
		m.POST("/pt-sessions", h.booking.SchedulePTSession)

		t := protected.Group("/trainers/:trainerID")
		t.POST("/availability", h.trainer.AddAvailability)
		t.GET("/availability", h.trainer.ListAvailability)
		t.GET("/schedule", h.trainer.Schedule)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/register", h.account.RegisterAdmin)
		admin.POST("/rooms", h.facility.CreateRoom)
		admin.GET("/rooms", h.facility.ListRooms)
		admin.POST("/classes", h.facility.CreateClass)
		admin.GET("/db-health", h.facility.DatabaseHealth)
		if deps.Mailer != nil {
			admin.POST("/test-email", TestEmail(deps.Mailer))
		}
	}
}

// Bootstrap creates the configured admin account if it is missing.
func (s *Server) Bootstrap(ctx context.Context) error {
	if s.config.AdminEmail == "" {
		return nil
	}
	return s.accounts.EnsureAdmin(ctx, account.RegisterAdminRequest{
		Name:     s.config.AdminName,
		Email:    s.config.AdminEmail,
		Password: s.config.AdminPassword,
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
