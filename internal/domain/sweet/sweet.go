package sweet

import (
	"errors"
	"time"
)

type Sweet struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("sweet not found")
	ErrOutOfStock = errors.New("out of stock")
)

// Price and Quantity are pointers so "missing" and "zero" stay distinguishable:
// quantity may legitimately be 0, but it must be present.
type CreateSweetRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=120"`
	Category string   `json:"category" binding:"required,min=1,max=80"`
	Price    *float64 `json:"price" binding:"required,gt=0"`
	Quantity *int     `json:"quantity" binding:"required,gte=0"`
}

// a full replace of the four mutable fields.
type UpdateSweetRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=120"`
	Category string   `json:"category" binding:"required,min=1,max=80"`
	Price    *float64 `json:"price" binding:"required,gt=0"`
	Quantity *int     `json:"quantity" binding:"required,gte=0"`
}

// only positive replenishment is permitted.
type RestockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gt=0"`
}
