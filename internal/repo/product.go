package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/owner_shop/internal/models"
)

// ProductFields holds the only columns an update may touch. Nil means keep.
type ProductFields struct {
	Name     *string
	Price    *float64
	Category *string
	Company  *string
}

func (f ProductFields) columns() map[string]any {
	cols := make(map[string]any, 4)
	if f.Name != nil {
		cols["name"] = *f.Name
	}
	if f.Price != nil {
		cols["price"] = *f.Price
	}
	if f.Category != nil {
		cols["category"] = *f.Category
	}
	if f.Company != nil {
		cols["company"] = *f.Company
	}
	return cols
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) ListProducts(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Scopes(OwnedBy(ownerID)).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id, ownerID uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Scopes(OwnedResource(id, ownerID)).First(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id, ownerID uuid.UUID, fields ProductFields) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(OwnedResource(id, ownerID)).First(&prod).Error; err != nil {
			return err
		}

		cols := fields.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&models.Product{}).Scopes(OwnedResource(id, ownerID)).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Scopes(OwnedResource(id, ownerID)).First(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Scopes(OwnedResource(id, ownerID)).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchProducts matches key as a case-insensitive literal substring of name,
// category or company.
func (r *GormRepo) SearchProducts(ctx context.Context, ownerID uuid.UUID, key string) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(key)) + "%"

	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Scopes(OwnedBy(ownerID)).
		Where(`(LOWER(name) LIKE @p ESCAPE '\' OR LOWER(category) LIKE @p ESCAPE '\' OR LOWER(company) LIKE @p ESCAPE '\')`,
			sql.Named("p", pattern)).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
