package domain

import "time"

type Purchase struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"userId"`
	Total     string         `gorm:"type:decimal(10,2);not null" json:"total"`
	Items     []PurchaseItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
}

type PurchaseItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PurchaseID uint   `gorm:"index;not null" json:"purchaseId"`
	ProductID  uint   `gorm:"not null" json:"productId"`
	Name       string `gorm:"size:180" json:"name"`
	Price      string `gorm:"type:decimal(10,2)" json:"price"`
	Quantity   int    `gorm:"not null" json:"quantity"`
}
