package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/calleja/devgear/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, domain.ErrNotFound
	}
	if err := r.db.WithContext(ctx).First(&u, "username = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	if u.Username != "" {
		u.Username = strings.TrimSpace(u.Username)
	}
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		// concurrent registrations race past the existence check; the
		// unique index on username settles it
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}
