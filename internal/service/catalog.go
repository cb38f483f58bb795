package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/owner_shop/internal/logging"
	"github.com/Skotchmaster/owner_shop/internal/models"
	"github.com/Skotchmaster/owner_shop/internal/repo"
	"github.com/Skotchmaster/owner_shop/internal/transport"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, prod *models.Product) error
	ListProducts(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error)
	GetProduct(ctx context.Context, id, ownerID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id, ownerID uuid.UUID, fields repo.ProductFields) (*models.Product, error)
	DeleteProduct(ctx context.Context, id, ownerID uuid.UUID) error
	SearchProducts(ctx context.Context, ownerID uuid.UUID, key string) ([]models.Product, error)
}

// ProductIndex mirrors products into a search index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CatalogService methods take the owner from the authenticated caller, never
// from the request body.
type CatalogService struct {
	Repo  ProductStore
	Index ProductIndex
}

func (s *CatalogService) CreateProduct(ctx context.Context, ownerID uuid.UUID, req transport.CreateProductRequest) (*models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.Name) == "" || req.Price < 0 {
		return nil, ErrValidation
	}

	prod := &models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Company:  req.Company,
		UserID:   ownerID,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.index(ctx, prod)
	return prod, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	items, err := s.Repo.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id, ownerID uuid.UUID) (*models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	prod, err := s.Repo.GetProduct(ctx, id, ownerID)
	if err != nil {
		return nil, notFound(err, "get product")
	}
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id, ownerID uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, ErrValidation
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrValidation
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, ownerID, repo.ProductFields{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Company:  req.Company,
	})
	if err != nil {
		return nil, notFound(err, "update product")
	}

	s.index(ctx, prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrUnauthenticated
	}
	if err := s.Repo.DeleteProduct(ctx, id, ownerID); err != nil {
		return notFound(err, "delete product")
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("index_delete_failed", "product_id", id.String(), "error", err)
		}
	}
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, ownerID uuid.UUID, key string) ([]models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	items, err := s.Repo.SearchProducts(ctx, ownerID, key)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) index(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", prod.ID.String(), "error", err)
	}
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
