package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/owner_shop/internal/db"
	"github.com/Skotchmaster/owner_shop/internal/logging"
	authmw "github.com/Skotchmaster/owner_shop/internal/middleware/auth"
	"github.com/Skotchmaster/owner_shop/internal/repo"
	"github.com/Skotchmaster/owner_shop/internal/service"
	"github.com/Skotchmaster/owner_shop/internal/tokens"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (f *fakePublisher) last() recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *tokens.Service
	Events *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := pkgdb.Open(ctx, "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, pkgdb.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = pkgdb.Close(gdb) })

	tk, err := tokens.NewService([]byte("test-jwt-secret"), 2*time.Hour)
	require.NoError(t, err)

	r := repo.New(gdb)
	events := &fakePublisher{}

	e := New(logging.NewWithWriter(io.Discard, "error"))
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tk}, Events: events},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}, Events: events},
		Auth:           authmw.NewBearerAuth(tk),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, gdb) },
	})

	return &testEnv{T: t, E: e, DB: gdb, Tokens: tk, Events: events}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(env.T, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func resultOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["result"].(string)
}

// register creates a user and returns its id and token.
func (env *testEnv) register(name, email string) (string, string) {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/register", map[string]string{
		"name": name, "email": email, "password": "Secret123",
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result struct {
			ID string `json:"id"`
		} `json:"result"`
		Auth string `json:"auth"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp.Auth)
	return resp.Result.ID, resp.Auth
}

type productResp struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Company  string  `json:"company"`
	UserID   string  `json:"userId"`
}

func (env *testEnv) addProduct(token string, body map[string]any) productResp {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/add-product", body, token)
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	return decode[productResp](env.T, rec)
}
