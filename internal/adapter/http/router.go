package http

import (
	"log/slog"

	"github.com/ViduraMC/Bakery-App/internal/adapter/http/middleware"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Products *ProductHandler
	Orders   *OrderHandler
	Auth     *AuthHandler
}

func NewRouter(h Handlers, l *slog.Logger, allowedOrigins []string) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(l))
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Debug("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/products", h.Products.ListProducts)
		api.POST("/products", h.Products.CreateProduct)
		api.GET("/products/:id", h.Products.GetProduct)
		api.PUT("/products/:id", h.Products.UpdateProduct)
		api.DELETE("/products/:id", h.Products.DeleteProduct)

		api.POST("/orders", h.Orders.CreateOrder)
		api.GET("/orders", h.Orders.ListOrders)
		api.GET("/orders/:id", h.Orders.GetOrderByID)
		api.GET("/orders/:id/status", h.Orders.GetOrderStatus)
		api.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)

		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
	}

	return r
}
