package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calleja/devgear/internal/domain"
)

func TestUserRepoDuplicateUsernameMapsToErrDuplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("embedded postgres")
	}
	db, _ := startCatalogDB(t)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	repo := NewUserRepo(db)

	require.NoError(t, repo.Save(context.Background(), &domain.User{Username: "shopper", PasswordHash: "h1"}))

	err := repo.Save(context.Background(), &domain.User{Username: "shopper", PasswordHash: "h2"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepoBlankUsernameIsNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("embedded postgres")
	}
	db, _ := startCatalogDB(t)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	repo := NewUserRepo(db)

	_, err := repo.FindByUsername(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
