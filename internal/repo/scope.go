package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy restricts a query to rows whose owner is callerID.
func OwnedBy(callerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", callerID)
	}
}

// OwnedResource is the single-row predicate used by get, update and delete:
// id AND owner. A row owned by someone else matches exactly like a missing id.
func OwnedResource(resourceID, callerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(OwnedBy(callerID)).Where("id = ?", resourceID)
	}
}
