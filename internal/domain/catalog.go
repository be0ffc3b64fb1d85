package domain

// Product is the canonical catalog row. Catalog management writes these;
// everything in this module reads them.
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:180;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Image       *string `gorm:"size:255" json:"image"`
	Price       string  `gorm:"type:decimal(10,2);not null" json:"price"`
}

// SalePrice marks a product as on sale. At most one row per product.
type SalePrice struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"uniqueIndex;not null" json:"productId"`
	SalePrice string `gorm:"type:decimal(10,2);not null" json:"salePrice"`
}

// ProductMetadata is optional sale presentation data (zero or one per product).
type ProductMetadata struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ProductID    uint    `gorm:"uniqueIndex;not null" json:"productId"`
	Discount     *string `gorm:"size:60" json:"discount"`
	SaleCategory *string `gorm:"size:100;index" json:"saleCategory"`
	Featured     bool    `gorm:"default:false" json:"featured"`
	Priority     int     `gorm:"default:0" json:"priority"`
}

func (ProductMetadata) TableName() string { return "product_metadata" }

type SaleCategory struct {
	Name        string `gorm:"primaryKey;size:100" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// SaleProduct is the denormalized sale listing record. It is derived, never
// persisted: a SaleProduct exists iff a SalePrice row exists for the product.
type SaleProduct struct {
	ID                  uint    `json:"id"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Image               *string `json:"image"`
	Price               string  `json:"price"`
	OriginalPrice       string  `json:"originalPrice"`
	SalePrice           string  `json:"salePrice"`
	Discount            *string `json:"discount"`
	Category            string  `json:"category"`
	SaleCategory        *string `json:"saleCategory"`
	Featured            bool    `json:"featured"`
	Priority            int     `json:"priority"`
	CategoryDescription *string `json:"categoryDescription"`
}
