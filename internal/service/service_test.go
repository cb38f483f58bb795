package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/owner_shop/internal/db"
	"github.com/Skotchmaster/owner_shop/internal/models"
	"github.com/Skotchmaster/owner_shop/internal/repo"
	"github.com/Skotchmaster/owner_shop/internal/tokens"
	"github.com/Skotchmaster/owner_shop/internal/transport"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]models.Product
	deleted []uuid.UUID
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uuid.UUID]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = *p
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type testEnv struct {
	repo    *repo.GormRepo
	tokens  *tokens.Service
	auth    *AuthService
	catalog *CatalogService
	index   *fakeIndex
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
	idx := newFakeIndex()
	return &testEnv{
		repo:    r,
		tokens:  tk,
		auth:    &AuthService{Repo: r, Tokens: tk},
		catalog: &CatalogService{Repo: r, Index: idx},
		index:   idx,
	}
}

func ptr[T any](v T) *T { return &v }

func TestAuthService_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, transport.RegisterRequest{Name: "Alice", Email: " Alice@Example.com ", Password: "Secret123"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, reg.User.ID)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEqual(t, "Secret123", reg.User.PasswordHash)

	userID, err := env.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)

	res, err := env.auth.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	userID, err = env.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := transport.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "Secret123"}

	_, err := env.auth.Register(ctx, req)
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, req)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestAuthService_LoginMiss(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, transport.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "Secret123"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{name: "wrong password", email: "alice@example.com", pass: "nope"},
		{name: "unknown email", email: "bob@example.com", pass: "Secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.auth.Login(ctx, transport.LoginRequest{Email: tt.email, Password: tt.pass})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, transport.RegisterRequest{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.auth.Login(ctx, transport.LoginRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_OwnerAlwaysFromCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := uuid.New()

	prod, err := env.catalog.CreateProduct(ctx, alice, transport.CreateProductRequest{Name: "phone", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, alice, prod.UserID)
	assert.Contains(t, env.index.indexed, prod.ID)

	_, err = env.catalog.CreateProduct(ctx, uuid.Nil, transport.CreateProductRequest{Name: "phone"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCatalogService_CrossUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	prod, err := env.catalog.CreateProduct(ctx, alice, transport.CreateProductRequest{Name: "phone", Price: 10})
	require.NoError(t, err)

	_, err = env.catalog.GetProduct(ctx, prod.ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.catalog.UpdateProduct(ctx, prod.ID, bob, transport.UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.catalog.DeleteProduct(ctx, prod.ID, bob), ErrNotFound)
	assert.Empty(t, env.index.deleted)

	_, err = env.catalog.GetProduct(ctx, uuid.New(), alice)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.catalog.DeleteProduct(ctx, prod.ID, alice))
	assert.Equal(t, []uuid.UUID{prod.ID}, env.index.deleted)
}

func TestCatalogService_UpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := uuid.New()

	prod, err := env.catalog.CreateProduct(ctx, alice, transport.CreateProductRequest{Name: "phone", Price: 10})
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(ctx, prod.ID, alice, transport.UpdateProductRequest{Price: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.UpdateProduct(ctx, prod.ID, alice, transport.UpdateProductRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.catalog.UpdateProduct(ctx, prod.ID, alice, transport.UpdateProductRequest{Company: ptr("acme")})
	require.NoError(t, err)
	assert.Equal(t, "phone", got.Name)
	assert.Equal(t, "acme", got.Company)
	assert.Equal(t, "acme", env.index.indexed[prod.ID].Company)
}

func TestCatalogService_IndexFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.index.err = errors.New("index down")
	ctx := context.Background()
	alice := uuid.New()

	prod, err := env.catalog.CreateProduct(ctx, alice, transport.CreateProductRequest{Name: "phone"})
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeleteProduct(ctx, prod.ID, alice))
}
