package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/owner_shop/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/owner_shop/internal/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	Auth           *authmw.BearerAuth
	Ready          func(ctx context.Context) error
}

// New returns an echo instance with the shared middleware chain, the
// validator and the {"result": ...} error renderer installed.
func New(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)

	// middleware is attached per route so unknown paths still answer 404
	protected := d.Auth.RequireAuth

	e.POST("/add-product", d.CatalogHandler.CreateProduct, protected)
	e.GET("/products", d.CatalogHandler.GetProducts, protected)
	e.GET("/product/:id", d.CatalogHandler.GetProduct, protected)
	e.PUT("/product/:id", d.CatalogHandler.UpdateProduct, protected)
	e.DELETE("/product/:id", d.CatalogHandler.DeleteProduct, protected)
	e.GET("/search/:key", d.CatalogHandler.SearchProducts, protected)
}
