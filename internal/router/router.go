// Package router registers every HTTP route on an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/handler"
	"github.com/iliyamo/inventory-pos/internal/middleware"
)

// Handlers groups the handler sets served by the API.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Sales    *handler.SaleHandler
	Vendors  *handler.VendorHandler
	Contacts *handler.ContactHandler
	Imports  *handler.ImportHandler
	Activity *handler.ActivityHandler
}

// RegisterPublic registers routes that need no token: health, auth entry
// points, the contact form and uploaded files under /uploads.
func RegisterPublic(e *echo.Echo, h Handlers, db *sql.DB, uploadDir string) {
	e.GET("/healthz", handler.Health(db))
	if uploadDir != "" {
		e.Static("/uploads", uploadDir)
	}

	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)
	e.POST("/refresh", h.Auth.Refresh)
	e.POST("/contact", h.Contacts.Create)
}

// RegisterProtected registers routes that require a bearer access token.
func RegisterProtected(e *echo.Echo, h Handlers, v middleware.Verifier, log *zap.Logger) {
	g := e.Group("", middleware.JWTAuth(v, log))

	g.POST("/logout", h.Auth.Logout)

	g.GET("/users", h.Users.List)
	g.GET("/users/me", h.Users.Me)
	g.GET("/users/email/:email", h.Users.GetByEmail)
	g.GET("/users/:id", h.Users.Get)
	g.PUT("/users/:id", h.Users.Update)
	g.DELETE("/users/:id", h.Users.Delete)

	g.POST("/products", h.Products.Create)
	g.GET("/products", h.Products.List)
	g.GET("/products/check-name", h.Products.CheckName)
	g.GET("/products/:id", h.Products.Get)
	g.PUT("/products/:id", h.Products.Update)
	g.PUT("/products/:id/remove-image", h.Products.RemoveImage)
	g.DELETE("/products/:id", h.Products.Delete)

	g.POST("/sales", h.Sales.Create)
	g.GET("/sales", h.Sales.List)
	g.GET("/sales/user/:user_id", h.Sales.ListByUser)
	g.GET("/sales/:id", h.Sales.Get)
	g.PUT("/sales/:id", h.Sales.Update)
	g.DELETE("/sales/:id", h.Sales.Delete)

	g.POST("/vendors", h.Vendors.Create)
	g.GET("/vendors", h.Vendors.List)
	g.GET("/vendors/:id", h.Vendors.Get)
	g.PUT("/vendors/:id", h.Vendors.Update)
	g.DELETE("/vendors/:id", h.Vendors.Delete)
	g.GET("/vendors/:id/products", h.Vendors.Products)

	g.GET("/contact", h.Contacts.List)
	g.GET("/contact/:id", h.Contacts.Get)
	g.POST("/contact/:id/reply", h.Contacts.Reply)
	g.PUT("/contact/:id/status", h.Contacts.SetStatus)
	g.DELETE("/contact/:id", h.Contacts.Delete)

	g.POST("/import/products", h.Imports.Import)
	g.POST("/import/products/validate", h.Imports.Validate)
	g.GET("/import/template/:type", h.Imports.Template)
	g.GET("/import/history", h.Imports.History)
	g.GET("/import/history/:id", h.Imports.Get)

	g.GET("/activity", h.Activity.Get)
}
