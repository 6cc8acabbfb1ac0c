package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var Router *gin.Engine

func InitEngine() {
	Router = gin.Default()
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	Router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081", "https://pos.dukapos.dev"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func InitializeRoutes() {
	api := Router.Group("/api")
	{
		api.GET("/health", HealthCheck)
		api.POST("/auth/login", Login)

		authed := api.Group("")
		authed.Use(AuthMiddleware())
		{
			authed.GET("/search", SearchProducts)
			authed.GET("/scan/:barcode", ScanBarcode)

			products := authed.Group("/products")
			{
				products.POST("/", CreateNewProducts)
				products.GET("/:sku", GetProductBySKU)
				products.PUT("/:sku", EditProductBySKU)
				products.DELETE("/:sku", DeleteProductBySKU)
			}

			cart := authed.Group("/cart/:sessionId")
			{
				cart.GET("", GetCart)
				cart.DELETE("/clear", ClearCart)
				cart.POST("/items", AddToCart)
				cart.PUT("/items/:itemId", UpdateCartItem)
				cart.DELETE("/items/:itemId", RemoveFromCart)
				cart.PUT("/items/:itemId/discount", ApplyItemDiscount)
				cart.PUT("/customer", SetCartCustomer)
				cart.PUT("/location", SetCartLocation)
				cart.PUT("/notes", SetCartNotes)
				cart.PUT("/discount-code", ApplyDiscountCode)
				cart.DELETE("/discount-code", RemoveDiscountCode)
				cart.PUT("/discount", ApplyManualDiscount)
				cart.POST("/checkout", Checkout)
			}

			orders := authed.Group("/orders")
			{
				orders.GET("/", GetOrders)
				orders.GET("/:orderId/payments", GetOrderPayments)
				orders.POST("/:orderId/payments", AddOrderPayment)
			}

			inventory := authed.Group("/inventory")
			{
				inventory.GET("/", GetInventory)
				inventory.POST("/adjust", AdjustStock)
				inventory.GET("/movements", GetStockMovements)
			}

			authed.GET("/customers", GetCustomers)
			authed.GET("/locations", GetLocations)

			settings := authed.Group("/settings/:sessionId")
			{
				settings.GET("/theme", GetThemeMode)
				settings.PUT("/theme", SetThemeMode)
			}

			analytics := authed.Group("/analytics")
			{
				analytics.GET("/sales", GetSalesMetrics)
				analytics.GET("/trend", GetSalesTrend)
				analytics.GET("/inventory", GetInventoryMetrics)
				analytics.GET("/top-products", GetTopProducts)

				// AI-powered analytics endpoints
				aiAnalytics := analytics.Group("/ai")
				{
					aiAnalytics.GET("/sales-report", GenerateAISalesReport)
					aiAnalytics.GET("/inventory-report", GenerateAIInventoryReport)
					aiAnalytics.GET("/product-analysis", GenerateAIProductAnalysis)
				}
			}
		}
	}
}
