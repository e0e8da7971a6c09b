package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oticas/internal/errors"
	"oticas/internal/testutil"
)

func TestAdminRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLAdminRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, " Admin@Oticas.com ", "hash", time.Now())
	require.NoError(t, err)

	byEmail, err := repo.FindByEmail(ctx, "ADMIN@oticas.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "admin@oticas.com", byEmail.Email)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, byEmail.Email, byID.Email)
}

func TestAdminRepository_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLAdminRepository(db)

	_, err := repo.FindByEmail(context.Background(), "nobody@oticas.com")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = repo.FindByID(context.Background(), 12)
	_, ok = errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestAdminRepository_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLAdminRepository(db)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "a@oticas.com", "h", time.Now())
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "A@oticas.com", "h", time.Now())
	assert.Error(t, err)
}
