package authmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/owner_shop/internal/logging"
)

const (
	MsgMissingToken = "Please add a token in the header"
	MsgInvalidToken = "Please provide a valid token"

	userIDKey = "user_id"
)

type ctxKey struct{}

// TokenParser is satisfied by *tokens.Service.
type TokenParser interface {
	Verify(raw string) (uuid.UUID, error)
}

type BearerAuth struct {
	Tokens TokenParser
}

func NewBearerAuth(tokens TokenParser) *BearerAuth {
	return &BearerAuth{Tokens: tokens}
}

// RequireAuth expects "Authorization: <scheme> <token>". The scheme itself is
// not checked.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgMissingToken)
		}

		fields := strings.Fields(header)
		if len(fields) < 2 {
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
		}

		userID, err := m.Tokens.Verify(fields[1])
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
		}

		setUserContext(c, userID)
		return next(c)
	}
}

func setUserContext(c echo.Context, userID uuid.UUID) {
	c.Set(userIDKey, userID)

	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, ctxKey{}, userID)
	ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", userID.String()))
	c.SetRequest(c.Request().WithContext(ctx))
}

// UserID returns the principal attached by RequireAuth.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
