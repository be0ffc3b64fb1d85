package usecase

import (
	"context"

	"github.com/calleja/devgear/internal/domain"
)

type CatalogUC struct {
	Catalog domain.CatalogRepo
}

// SaleListing returns the priority-ordered sale view. An empty catalog (or
// one with nothing on sale) yields an empty, non-nil slice.
func (uc *CatalogUC) SaleListing(ctx context.Context) ([]domain.SaleProduct, error) {
	list, err := uc.Catalog.ListSaleProducts(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.SaleProduct{}
	}
	return list, nil
}

func (uc *CatalogUC) ShopListing(ctx context.Context) ([]domain.Product, error) {
	list, err := uc.Catalog.ListShopProducts(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Product{}
	}
	return list, nil
}
