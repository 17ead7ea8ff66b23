package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/pkg/config"
)

func tempStore(t *testing.T) *fileNumberStore {
	t.Helper()
	return &fileNumberStore{path: filepath.Join(t.TempDir(), "numbers.txt")}
}

func TestFileNumberStoreListByScope(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.WriteFile(store.path,
		[]byte("RE-2026-0001\nRE-2025-0044\nAN-2026-0003\n\nRE-2026-0002\n"), 0o644))

	numbers, err := store.ListByScope(context.Background(), "c1", entity.DocumentTypeInvoice, "RE-2026-")
	require.NoError(t, err)
	assert.Equal(t, []string{"RE-2026-0001", "RE-2026-0002"}, numbers)
}

func TestFileNumberStoreListByScopeMissingFile(t *testing.T) {
	store := tempStore(t)
	numbers, err := store.ListByScope(context.Background(), "c1", entity.DocumentTypeInvoice, "RE-2026-")
	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestFileNumberStoreReserveRejectsDuplicate(t *testing.T) {
	store := tempStore(t)
	num := &entity.DocumentNumber{
		CompanyID:  "c1",
		Type:       entity.DocumentTypeInvoice,
		Number:     "RE-2026-0001",
		Scope:      "RE-2026-",
		AssignedAt: time.Now(),
	}
	require.NoError(t, store.Reserve(context.Background(), num))

	err := store.Reserve(context.Background(), num)
	require.ErrorIs(t, err, domain.ErrDuplicateNumber)

	numbers, err := store.ListByScope(context.Background(), "c1", entity.DocumentTypeInvoice, "RE-2026-")
	require.NoError(t, err)
	assert.Equal(t, []string{"RE-2026-0001"}, numbers, "rejected reservation must not be persisted")
}

// DB_HOST carries a localhost default, so only an explicit DATABASE_URL may
// select the Postgres store; the --existing file wins over everything.
func TestNumberStoreSelection(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Host = "localhost"

	store, cleanup, err := numberStore(context.Background(), cfg, "numbers.txt")
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &fileNumberStore{}, store)

	_, _, err = numberStore(context.Background(), cfg, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
