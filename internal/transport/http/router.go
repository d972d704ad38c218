package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/handlers"
	"github.com/avetisn/plumb_erp/internal/models"
	"github.com/avetisn/plumb_erp/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	PromoHandler    *handlers.PromoHandler
	OrderHandler    *handlers.OrderHandler
	WarrantyHandler *handlers.WarrantyHandler
	PointsHandler   *handlers.PointsHandler
	SearchHandler   *handlers.SearchHandler
	TokenService    *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)
	v1.POST("/promo/validate", d.PromoHandler.Validate)

	admin := v1.Group("/admin", d.TokenService.RequireRoles(models.RoleAdmin))

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/products/:id/stock", d.ProductHandler.AdjustStock)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.POST("/promo", d.PromoHandler.Create)
	admin.DELETE("/promo/:code", d.PromoHandler.Deactivate)
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.POST("/users", d.UserHandler.CreateUser)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)

	products := v1.Group("/products")
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("", d.ProductHandler.GetProducts)

	authed := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	authed.POST("/orders", d.OrderHandler.PlaceOrder)
	authed.GET("/orders", d.OrderHandler.MyOrders)
	authed.POST("/promo/apply", d.PromoHandler.Apply)
	authed.POST("/warranty/:itemID", d.WarrantyHandler.IssueCard)
	authed.GET("/warranty", d.WarrantyHandler.MyCards)
	authed.GET("/points", d.PointsHandler.Balance)
	authed.GET("/points/history", d.PointsHandler.History)

	staff := v1.Group("/promo", d.TokenService.RequireRoles(
		models.RoleAdmin, models.RoleSalesManager, models.RoleDistributor, models.RoleFieldExecutive,
	))
	staff.GET("/active", d.PromoHandler.Active)
	staff.GET("/:code", d.PromoHandler.GetByCode)
}
