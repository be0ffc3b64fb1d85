package postgres

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/calleja/devgear/internal/domain"
)

type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// saleRow is the raw projection of the four-way sale join. Metadata and
// category columns are pointers because those joins are LEFT joins.
type saleRow struct {
	ID                  uint
	Name                string
	Description         string
	Image               *string
	Price               string
	SalePrice           string
	Discount            *string
	SaleCategory        *string
	Featured            *bool
	Priority            *int
	CategoryDescription *string
}

// ListSaleProducts builds the sale listing with a single multi-way join.
// The round-trip count must stay constant no matter how large the catalog
// gets, so no per-product lookups are allowed here.
func (r *CatalogRepo) ListSaleProducts(ctx context.Context) ([]domain.SaleProduct, error) {
	var rows []saleRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select(`products.id, products.name, products.description, products.image, products.price,
			sale_prices.sale_price,
			product_metadata.discount, product_metadata.sale_category, product_metadata.featured, product_metadata.priority,
			sale_categories.description AS category_description`).
		Joins("INNER JOIN sale_prices ON sale_prices.product_id = products.id").
		Joins("LEFT JOIN product_metadata ON product_metadata.product_id = products.id").
		Joins("LEFT JOIN sale_categories ON sale_categories.name = product_metadata.sale_category").
		Order("products.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return sortByPriority(mapSaleRows(rows)), nil
}

func (r *CatalogRepo) ListShopProducts(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// mapSaleRows fills the left-join defaults: absent metadata yields
// discount=nil, saleCategory=nil, featured=false, priority=0,
// categoryDescription=nil. Every record gets the fixed "Sale" tag and
// originalPrice mirrors the catalog price.
func mapSaleRows(rows []saleRow) []domain.SaleProduct {
	out := make([]domain.SaleProduct, 0, len(rows))
	for _, row := range rows {
		sp := domain.SaleProduct{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			Image:         row.Image,
			Price:         row.Price,
			OriginalPrice: row.Price,
			SalePrice:     row.SalePrice,
			Category:      "Sale",
		}
		sp.Discount = row.Discount
		sp.SaleCategory = row.SaleCategory
		sp.CategoryDescription = row.CategoryDescription
		if row.Featured != nil {
			sp.Featured = *row.Featured
		}
		if row.Priority != nil {
			sp.Priority = *row.Priority
		}
		out = append(out, sp)
	}
	return out
}

// sortByPriority orders descending by priority; ties keep fetch order.
func sortByPriority(list []domain.SaleProduct) []domain.SaleProduct {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	return list
}
