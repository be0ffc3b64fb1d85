package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/calleja/devgear/internal/domain"
)

type PurchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepo(db *gorm.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

func (r *PurchaseRepo) Save(ctx context.Context, p *domain.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PurchaseRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Purchase, error) {
	var list []domain.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
