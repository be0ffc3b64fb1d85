package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/calleja/devgear/internal/domain"
)

type PurchaseUC struct {
	Purchases domain.PurchaseRepo
}

func (uc *PurchaseUC) Create(ctx context.Context, userID uint, items []domain.PurchaseItem, total string) (*domain.Purchase, error) {
	if userID == 0 {
		return nil, errors.New("user id")
	}
	if len(items) == 0 {
		return nil, errors.New("purchase has no items")
	}
	if _, err := strconv.ParseFloat(total, 64); err != nil {
		return nil, errors.New("invalid total")
	}
	for _, it := range items {
		if it.ProductID == 0 || it.Quantity < 1 {
			return nil, errors.New("invalid purchase item")
		}
	}
	p := &domain.Purchase{UserID: userID, Total: total, Items: items, CreatedAt: time.Now()}
	if err := uc.Purchases.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PurchaseUC) History(ctx context.Context, userID uint) ([]domain.Purchase, error) {
	if userID == 0 {
		return nil, errors.New("user id")
	}
	return uc.Purchases.ListByUser(ctx, userID)
}
