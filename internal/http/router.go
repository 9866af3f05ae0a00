package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/expensetracker/internal/config"
	"github.com/geocoder89/expensetracker/internal/http/handlers"
	"github.com/geocoder89/expensetracker/internal/http/middlewares"
	"github.com/geocoder89/expensetracker/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs. Prom and Gatherer may be nil.
type Deps struct {
	Config   config.Config
	Accounts handlers.Accounts
	Expenses handlers.ExpenseService
	Tokens   middlewares.TokenVerifier
	Users    middlewares.UserResolver
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Checks   []handlers.Check
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Config.Env != "dev" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered", "panic", recovered)
		handlers.RespondInternal(c, "Internal server error")
		c.Abort()
	}))
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.CORSAllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Route not found")
	})

	// health
	h := handlers.NewHealthHandler(deps.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authGate := middlewares.NewAuthMiddleware(deps.Tokens, deps.Users, deps.Prom, log)
	authHandler := handlers.NewAuthHandler(deps.Accounts, log)
	expensesHandler := handlers.NewExpensesHandler(deps.Expenses, log)

	// body checks run after the auth gate so a tokenless write gets 401
	body := []gin.HandlerFunc{
		middlewares.MaxBodyBytes(deps.Config.MaxBodyBytes),
		middlewares.RequireJSON(),
	}

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", append(body, authHandler.Register)...)
	authRoutes.POST("/login", append(body, authHandler.Login)...)
	authRoutes.GET("/me", authGate.RequireAuth(), authHandler.Me)

	expenses := api.Group("/expenses", authGate.RequireAuth())
	expenses.Use(body...)
	expenses.GET("", expensesHandler.ListExpenses)
	expenses.POST("", expensesHandler.CreateExpense)
	expenses.PATCH("/:id", expensesHandler.UpdateExpense)
	expenses.DELETE("/:id", expensesHandler.DeleteExpense)

	return r
}

// Server builds the http.Server with the timeouts used in every environment.
func Server(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
