package transport

import "github.com/Skotchmaster/owner_shop/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Email    string `json:"email"    validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateProductRequest has no owner field; anything like it in the body is
// dropped by the binder.
type CreateProductRequest struct {
	Name     string  `json:"name"     validate:"required,max=200"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Category string  `json:"category" validate:"max=200"`
	Company  string  `json:"company"  validate:"max=200"`
}

type UpdateProductRequest struct {
	Name     *string  `json:"name"     validate:"omitnil,min=1,max=200"`
	Price    *float64 `json:"price"    validate:"omitnil,gte=0"`
	Category *string  `json:"category" validate:"omitnil,max=200"`
	Company  *string  `json:"company"  validate:"omitnil,max=200"`
}

type Result struct {
	Result string `json:"result"`
}

type RegisterResponse struct {
	Result *models.User `json:"result"`
	Auth   string       `json:"auth"`
}

type LoginResponse struct {
	User *models.User `json:"user"`
	Auth string       `json:"auth"`
}
