package http

import (
	"net/http"

	"github.com/geocoder89/taskboard/internal/app"
	"github.com/geocoder89/taskboard/internal/http/handlers"
	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/geocoder89/taskboard/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

func NewRouter(a *app.App) *gin.Engine {
	if a.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())

	// middleware

	r.Use(gin.Recovery())
	if a.Cfg.OTelEndpoint != "" {
		r.Use(otelgin.Middleware(a.Cfg.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoadIdentity(a.Sessions, a.Users, a.Cfg.Env == "prod"))
	r.Use(middlewares.RequestLogger(a.Log))
	r.Use(a.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	r.NoRoute(handlers.NotFound)
	r.StaticFS("/static", http.FS(web.Static()))

	// health + metrics
	h := handlers.NewHealthHandler(a.Ping, a.Draining.Load)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	// board
	tasksHandler := handlers.NewTasksHandler(a.Tasks)

	r.GET("/", tasksHandler.Home)
	r.GET("/api/tasks", tasksHandler.APIList)

	requireLogin := middlewares.RequireLogin(handlers.Unauthorized)
	r.GET("/add", requireLogin, tasksHandler.Add)
	r.POST("/add", requireLogin, middlewares.RequireForm(), tasksHandler.Add)

	r.GET("/update/:task_id", tasksHandler.Update)
	r.POST("/update/:task_id", tasksHandler.Update)
	r.GET("/delete/:task_id", tasksHandler.Delete)

	// accounts
	authHandler := handlers.NewAuthHandler(a.Users, a.Sessions, a.Cfg.Env == "prod")

	limiter := middlewares.NewRateLimiter(a.Cfg.LoginRateLimit, a.Cfg.LoginRateWindow)
	limiter.OnLimited = handlers.TooManyRequests
	limitByIP := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.GET("/register", authHandler.RegisterPage)
	r.POST("/register", limitByIP, middlewares.RequireForm(), authHandler.Register)
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", limitByIP, middlewares.RequireForm(), authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	return r
}
