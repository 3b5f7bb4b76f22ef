package router

import (
	"threadmarket/domain"
	"threadmarket/internal/middleware"
	"threadmarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.POST("/refresh", handler.Refresh, authRequired)
	users.GET("/profile", handler.Profile, authRequired)
	users.PUT("/profile", handler.UpdateProfile, authRequired)
	users.PUT("/password", handler.ChangePassword, authRequired)

	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, adminOnly)
	users.PUT("/:id/role", handler.UpdateRole, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, exchangeHandler *rest.ExchangeHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products")

	// Catalog reads are public, an optional token only widens visibility.
	products.GET("", handler.GetAllProducts, middleware.OptionalAuth())
	products.GET("/:id", handler.GetProductByID, middleware.OptionalAuth())

	staffOnly := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)
	products.POST("", handler.CreateProduct, authRequired, staffOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, staffOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, staffOnly)
	products.POST("/bulk-delete", handler.BulkDeleteProducts, authRequired, staffOnly)
	products.POST("/import", exchangeHandler.ImportProducts, authRequired, staffOnly)
	products.GET("/export", exchangeHandler.Export, authRequired, staffOnly)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)

	staffOnly := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)
	categories.POST("", handler.CreateCategory, authRequired, staffOnly)
	categories.PUT("/:id", handler.UpdateCategory, authRequired, staffOnly)
	categories.DELETE("/:id", handler.DeleteCategory, authRequired, staffOnly)
}

func SetOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, authRequired echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.POST("", handler.CreateOrder)
	orders.GET("", handler.GetAllOrders)
	orders.GET("/:id", handler.GetOrderByID)
	orders.POST("/:id/cancel", handler.CancelOrder)

	staffOnly := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)
	orders.PUT("/:id/status", handler.UpdateOrderStatus, staffOnly)
	orders.DELETE("/:id", handler.DeleteOrder, staffOnly)
}

func SetReportRoutes(api *echo.Group, handler *rest.ReportHandler, exchangeHandler *rest.ExchangeHandler, authRequired echo.MiddlewareFunc) {
	staffOnly := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)
	reports := api.Group("/reports", authRequired, staffOnly)

	reports.GET("/dashboard", handler.Dashboard)
	reports.GET("/daily", handler.Daily)
	reports.GET("/weekly", handler.Weekly)
	reports.GET("/monthly", handler.Monthly)
	reports.GET("/quarterly", handler.Quarterly)
	reports.GET("/chart", handler.Chart)
	reports.GET("/export", exchangeHandler.Export)
}
