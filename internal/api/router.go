package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/stockroom/inventory-api/internal/api/handler"
	"github.com/stockroom/inventory-api/internal/api/middleware"
	"github.com/stockroom/inventory-api/internal/core/domain"
	"github.com/stockroom/inventory-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Accounts     ports.AccountService
	Users        ports.UserService
	Products     ports.ProductService
	Categories   ports.CategoryService
	Suppliers    ports.SupplierService
	Transactions ports.TransactionService
	Tokens       ports.TokenVerifier
	HealthChecks map[string]handler.Check
	CORSOrigins  []string
	Log          zerolog.Logger
	// Registerer receives the HTTP request metrics. Nil means the
	// default Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "inventory",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.HealthChecks, d.Log)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := middleware.Auth(d.Tokens)

	// --- Auth routes ---
	auth := handler.NewAuthHandler(d.Accounts)
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.GET("/me", auth.Me, authenticated)

	api := e.Group("/api", authenticated)

	products := handler.NewProductHandler(d.Products)
	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.PUT("/products/:id", products.Update)
	api.DELETE("/products/:id", products.Delete)

	categories := handler.NewCategoryHandler(d.Categories)
	api.POST("/categories", categories.Create)
	api.GET("/categories", categories.List)
	api.GET("/categories/:id", categories.Get)
	api.PUT("/categories/:id", categories.Update)
	api.DELETE("/categories/:id", categories.Delete)

	suppliers := handler.NewSupplierHandler(d.Suppliers)
	api.POST("/suppliers", suppliers.Create)
	api.GET("/suppliers", suppliers.List)
	api.GET("/suppliers/:id", suppliers.Get)
	api.PUT("/suppliers/:id", suppliers.Update)
	api.DELETE("/suppliers/:id", suppliers.Delete)

	transactions := handler.NewTransactionHandler(d.Transactions)
	api.POST("/transactions", transactions.Create)
	api.GET("/transactions", transactions.List)
	api.GET("/transactions/:id", transactions.Get)
	api.PUT("/transactions/:id", transactions.Update)
	api.DELETE("/transactions/:id", transactions.Delete)

	// User administration is restricted to admins.
	users := handler.NewUserHandler(d.Users)
	admin := api.Group("/users", middleware.RBAC(domain.RoleAdmin))
	admin.POST("", users.Create)
	admin.GET("", users.List)
	admin.GET("/:id", users.Get)
	admin.PUT("/:id", users.Update)
	admin.DELETE("/:id", users.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error()
			}
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
