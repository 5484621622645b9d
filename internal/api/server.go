package api

import (
	"errors"
	"net/http"
	"time"

	"smartkitchen/internal/client"
	"smartkitchen/internal/dashboard"
	"smartkitchen/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the dashboard API
type Options struct {
	AllowOrigins []string
	JWTSecret    string
}

// DashboardAPI serves the inventory dashboard over HTTP
type DashboardAPI struct {
	Router  *gin.Engine
	Service *dashboard.Service
	Hub     *Hub
	opts    Options
}

// NewDashboardAPI creates a new dashboard API instance
func NewDashboardAPI(svc *dashboard.Service, opts Options) *DashboardAPI {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	if len(opts.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	api := &DashboardAPI{
		Router:  router,
		Service: svc,
		Hub:     NewHub(),
		opts:    opts,
	}
	svc.Subscribe(api.Hub.BroadcastSummary)

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (d *DashboardAPI) setupRoutes() {
	d.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Smart kitchen dashboard is running"})
	})
	d.Router.GET("/ws", d.handleWebSocket)

	v1 := d.Router.Group("/api/v1")
	{
		// Inventory
		v1.GET("/inventory", d.GetInventory)
		v1.GET("/inventory/expiring", d.GetExpiring)
		v1.GET("/inventory/trends", d.GetTrends)
		v1.GET("/alerts", d.GetAlerts)
		v1.GET("/restock", d.GetRestockPlan)

		// Menu and recommendations
		v1.GET("/menu", d.GetMenu)
		v1.GET("/recommendations", d.GetRecommendations)

		// Sales
		v1.GET("/sales/:period", d.GetSales)
		v1.GET("/reports/sales.csv", d.GetSalesReport)

		// Scanner
		v1.GET("/scan/image", d.GetScanImage)

		// Status
		v1.GET("/status", d.GetStatus)

		writes := v1.Group("")
		if d.opts.JWTSecret != "" {
			writes.Use(AuthMiddleware(d.opts.JWTSecret))
		}
		writes.POST("/orders", d.CreateOrder)
		writes.POST("/scan", d.Scan)
		writes.POST("/refresh", d.Refresh)
	}
}

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrParse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "parse"})
	case errors.As(err, &statusErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "status", "status": statusErr.Code})
	case errors.Is(err, client.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "network"})
	case errors.Is(err, models.ErrInvalidMaxLife), errors.Is(err, models.ErrNegativeQuantity), errors.Is(err, models.ErrMissingIngredient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
