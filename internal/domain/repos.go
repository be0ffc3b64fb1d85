package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// CatalogRepo reads the catalog store. ListSaleProducts must issue a bounded
// number of round trips regardless of catalog size.
type CatalogRepo interface {
	ListSaleProducts(ctx context.Context) ([]SaleProduct, error)
	ListShopProducts(ctx context.Context) ([]Product, error)
}

type PurchaseRepo interface {
	Save(ctx context.Context, p *Purchase) error
	ListByUser(ctx context.Context, userID uint) ([]Purchase, error)
}

type UserRepo interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, u *User) error
}
