package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Name         string    `gorm:"not null"                json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"    json:"email"`
	PasswordHash string    `gorm:"not null"                json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Product.UserID is the owner reference. It is set once on create and
// every read or write predicate includes it.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Name      string    `gorm:"not null"                json:"name"`
	Price     float64   `gorm:"not null;default:0"      json:"price"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&User{}, &Product{}}
}
