package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/owner_shop/internal/logging"
	"github.com/Skotchmaster/owner_shop/internal/transport"
)

const (
	msgInvalidBody = "Invalid request body"

	msgRegisterFailed = "Failed to register user"
	msgLoginFailed    = "Failed to login"
	msgNoUser         = "No User found"

	msgAddFailed      = "Failed to add product"
	msgListFailed     = "Failed to fetch products"
	msgNoProduct      = "No Product found"
	msgGetFailed      = "Failed to fetch product details"
	msgUpdateFailed   = "Failed to update product"
	msgDeleteFailed   = "Failed to delete product"
	msgDeleted        = "Product deleted successfully"
	msgSearchFailed   = "Failed to search products"
	msgNoProducts     = "No products found"
	msgNotFoundOrAuth = "Product not found or unauthorized"
)

// ErrorHandler renders every error as {"result": message}. Messages of
// non-HTTP errors are never sent to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, transport.Result{Result: msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}

func result(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, transport.Result{Result: msg})
}
