package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/owner_shop/internal/logging"
	authmw "github.com/Skotchmaster/owner_shop/internal/middleware/auth"
	"github.com/Skotchmaster/owner_shop/internal/models"
	"github.com/Skotchmaster/owner_shop/internal/mykafka"
	"github.com/Skotchmaster/owner_shop/internal/service"
	"github.com/Skotchmaster/owner_shop/internal/transport"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, ownerID uuid.UUID, req transport.CreateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error)
	GetProduct(ctx context.Context, id, ownerID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id, ownerID uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id, ownerID uuid.UUID) error
	SearchProducts(ctx context.Context, ownerID uuid.UUID, key string) ([]models.Product, error)
}

type CatalogHTTP struct {
	Svc    CatalogService
	Events mykafka.Publisher
}

func caller(c echo.Context) (uuid.UUID, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, authmw.MsgMissingToken)
	}
	return id, nil
}

func (h *CatalogHTTP) publish(ctx context.Context, ownerID uuid.UUID, event map[string]any) {
	event["userID"] = ownerID.String()
	publish(ctx, h.Events, mykafka.TopicProductEvents, ownerID.String(), event)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	prod, err := h.Svc.CreateProduct(ctx, ownerID, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgAddFailed)
	}

	h.publish(ctx, ownerID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID.String(),
		"name":      prod.Name,
	})

	l.Info("create_product_success", "product_id", prod.ID.String())
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.ListProducts(ctx, ownerID)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgListFailed)
	}
	if len(items) == 0 {
		return result(c, msgNoProduct)
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	// a malformed id cannot name any product, so it gets the same answer
	// as an id owned by someone else.
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return result(c, msgNotFoundOrAuth)
	}

	prod, err := h.Svc.GetProduct(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return result(c, msgNotFoundOrAuth)
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgGetFailed)
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_product")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return result(c, msgNotFoundOrAuth)
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, ownerID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return result(c, msgNotFoundOrAuth)
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_update_error", "status", 400, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
		default:
			l.Error("product_update_error", "status", 500, "reason", "cannot update product", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, msgUpdateFailed)
		}
	}

	h.publish(ctx, ownerID, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID.String(),
		"name":      prod.Name,
	})

	l.Info("update_product_success", "product_id", prod.ID.String())
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return result(c, msgNotFoundOrAuth)
	}

	if err := h.Svc.DeleteProduct(ctx, id, ownerID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return result(c, msgNotFoundOrAuth)
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product from db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgDeleteFailed)
	}

	h.publish(ctx, ownerID, map[string]any{
		"type":      "product_deleted",
		"productID": id.String(),
	})

	l.Info("delete_product_success", "product_id", id.String())
	return result(c, msgDeleted)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	ownerID, err := caller(c)
	if err != nil {
		return err
	}

	// echo matches on RawPath when it is set (e.g. for "%2F"), and then
	// params arrive still encoded
	key := c.Param("key")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(key); err == nil {
			key = unescaped
		}
	}

	items, err := h.Svc.SearchProducts(ctx, ownerID, key)
	if err != nil {
		l.Error("search_products_error", "status", 500, "reason", "cannot search products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgSearchFailed)
	}
	if len(items) == 0 {
		return result(c, msgNoProducts)
	}

	return c.JSON(http.StatusOK, items)
}
