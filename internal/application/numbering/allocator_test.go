package numbering

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/pkg/config"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

// memRepo is an in-memory DocumentNumberRepository for allocator tests.
type memRepo struct {
	mu      sync.Mutex
	numbers []*entity.DocumentNumber
}

func (m *memRepo) ListByScope(_ context.Context, companyID string, docType entity.DocumentType, scope string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, n := range m.numbers {
		if n.CompanyID == companyID && n.Type == docType && n.Scope == scope {
			out = append(out, n.Number)
		}
	}
	return out, nil
}

func (m *memRepo) Reserve(_ context.Context, num *entity.DocumentNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.numbers {
		if n.CompanyID == num.CompanyID && n.Type == num.Type && n.Number == num.Number {
			return domain.ErrDuplicateNumber
		}
	}
	m.numbers = append(m.numbers, num)
	return nil
}

func testAllocator(repo *memRepo, cfg config.NumberingConfig) *Allocator {
	return NewAllocator(repo, cfg, logger.New(logger.Config{Env: "production", Level: "error"}))
}

var allocDate = time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)

func TestNextNumberSequence(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{
		InvoiceFormat: "RE-{YYYY}-{####}",
		OfferFormat:   "AN-{YYYY}-{####}",
	})

	n1, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0001", n1)

	n2, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0002", n2)

	// Offers run their own sequence.
	o1, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeOffer, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "AN-2026-0001", o1)
}

func TestNextNumberCompanyIsolation(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{InvoiceFormat: "RE-{YYYY}-{####}"})

	n1, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)
	n2, err := alloc.NextNumber(context.Background(), "c2", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)

	assert.Equal(t, "RE-2026-0001", n1)
	assert.Equal(t, "RE-2026-0001", n2)
}

func TestNextNumberYearRollover(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{InvoiceFormat: "RE-{YYYY}-{####}"})

	for i := 0; i < 3; i++ {
		_, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
		require.NoError(t, err)
	}

	next, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice,
		time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "RE-2027-0001", next, "new year starts a fresh sequence")
}

func TestNextNumberMinCounterFloor(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{
		InvoiceFormat:     "RE-{YYYY}-{####}",
		InvoiceMinCounter: 100,
	})

	n, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0100", n)

	n, err = alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0101", n, "floor must not reset an advanced sequence")
}

func TestNextNumberConcurrent(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{InvoiceFormat: "RE-{YYYY}-{####}"})

	const workers = 20
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for n := range results {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen[fmt.Sprintf("RE-2026-%04d", workers)])
}

func TestNextNumberExhaustedScope(t *testing.T) {
	repo := &memRepo{}
	alloc := testAllocator(repo, config.NumberingConfig{InvoiceFormat: "RE-{YYYY}-{#}"})

	seen := make(map[string]bool)
	for i := 1; i <= 9; i++ {
		n, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}

	_, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.ErrorIs(t, err, domain.ErrNumberExhausted)
}

func TestNextNumberInvalidFormat(t *testing.T) {
	alloc := testAllocator(&memRepo{}, config.NumberingConfig{InvoiceFormat: "RE-{##}-{####}"})
	_, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentTypeInvoice, allocDate)
	require.ErrorIs(t, err, domain.ErrInvalidFormat)
}

func TestNextNumberUnknownType(t *testing.T) {
	alloc := testAllocator(&memRepo{}, config.NumberingConfig{})
	_, err := alloc.NextNumber(context.Background(), "c1", entity.DocumentType("receipt"), allocDate)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreview(t *testing.T) {
	alloc := testAllocator(&memRepo{}, config.NumberingConfig{InvoiceFormat: "RE-{YYYY}{MM}-{###}"})

	n, err := alloc.Preview(entity.DocumentTypeInvoice, 7, allocDate)
	require.NoError(t, err)
	assert.Equal(t, "RE-202603-007", n)
}
