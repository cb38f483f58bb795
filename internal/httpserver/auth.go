package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/owner_shop/internal/logging"
	"github.com/Skotchmaster/owner_shop/internal/mykafka"
	"github.com/Skotchmaster/owner_shop/internal/service"
	"github.com/Skotchmaster/owner_shop/internal/transport"
)

type AuthService interface {
	Register(ctx context.Context, req transport.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req transport.LoginRequest) (*service.AuthResult, error)
}

type AuthHTTP struct {
	Svc    AuthService
	Events mykafka.Publisher
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("register_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgRegisterFailed)
	}

	publish(ctx, h.Events, mykafka.TopicUserEvents, res.User.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": res.User.ID.String(),
	})

	l.Info("register_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, transport.RegisterResponse{Result: res.User, Auth: res.Token})
}

// Login answers a credential miss with 200 {"result":"No User found"}.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindStrict(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Info("login_miss")
			return result(c, msgNoUser)
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
		default:
			l.Error("login_error", "status", 500, "reason", "cannot look up user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, msgLoginFailed)
		}
	}

	publish(ctx, h.Events, mykafka.TopicUserEvents, res.User.ID.String(), map[string]any{
		"type":   "user_logged_in",
		"userID": res.User.ID.String(),
	})

	l.Info("login_successful", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, transport.LoginResponse{User: res.User, Auth: res.Token})
}
