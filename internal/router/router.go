package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminHandler "github.com/nurturelink/consult-api/internal/handler/admin"
	appointmentHandler "github.com/nurturelink/consult-api/internal/handler/appointment"
	chatHandler "github.com/nurturelink/consult-api/internal/handler/chat"
	childHandler "github.com/nurturelink/consult-api/internal/handler/child"
	consultationHandler "github.com/nurturelink/consult-api/internal/handler/consultation"
	expertHandler "github.com/nurturelink/consult-api/internal/handler/expert"
	healthHandler "github.com/nurturelink/consult-api/internal/handler/health"
	linkHandler "github.com/nurturelink/consult-api/internal/handler/link"
	questionnaireHandler "github.com/nurturelink/consult-api/internal/handler/questionnaire"
	speechHandler "github.com/nurturelink/consult-api/internal/handler/speech"
	uploadHandler "github.com/nurturelink/consult-api/internal/handler/upload"
	userHandler "github.com/nurturelink/consult-api/internal/handler/user"
	"github.com/nurturelink/consult-api/internal/middleware"
	"github.com/nurturelink/consult-api/internal/model"
)

type Handlers struct {
	Health        *healthHandler.Handler
	User          *userHandler.Handler
	Child         *childHandler.Handler
	Expert        *expertHandler.Handler
	Admin         *adminHandler.Handler
	Consultation  *consultationHandler.Handler
	Link          *linkHandler.Handler
	Appointment   *appointmentHandler.Handler
	Chat          *chatHandler.Handler
	Questionnaire *questionnaireHandler.Handler
	Speech        *speechHandler.Handler
	Upload        *uploadHandler.Handler
}

type Config struct {
	RateLimit      int
	RateBurst      int
	TimeoutSeconds int
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics(),
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		engine.Use(middleware.NewRateLimiter(config.RateLimit, config.RateBurst).RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	r.handlers.Health.RegisterRoutes(api)

	// Public routes. Signup carries optional auth so an admin token can
	// create admin accounts.
	api.Use(r.auth.OptionalAuthenticate())
	r.handlers.User.RegisterRoutes(api)
	r.handlers.Expert.RegisterRoutes(api)

	// Everything below needs a session and a role.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.handlers.User.RegisterProtectedRoutes(protected)
	r.handlers.Appointment.RegisterRoutes(protected)
	r.handlers.Chat.RegisterRoutes(protected)
	r.handlers.Upload.RegisterRoutes(protected)
	r.handlers.Consultation.RegisterRoutes(protected)
	r.handlers.Link.RegisterRoutes(protected)

	parentOnly := protected.Group("")
	parentOnly.Use(r.auth.RequireRole(model.RoleParent))
	r.handlers.Child.RegisterRoutes(parentOnly)
	r.handlers.Questionnaire.RegisterRoutes(parentOnly)
	r.handlers.Speech.RegisterRoutes(parentOnly)

	adminOnly := protected.Group("")
	adminOnly.Use(r.auth.RequireRole(model.RoleAdmin))
	r.handlers.Admin.RegisterRoutes(adminOnly)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
