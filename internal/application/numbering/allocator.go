// Package numbering allocates document numbers. The domain resolver is pure;
// this layer adds the serialization that makes allocation collision-free.
package numbering

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/numbering"
	"github.com/rechnungswerk/fiscal/internal/domain/repository"
	"github.com/rechnungswerk/fiscal/pkg/config"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

// Allocator reserves the next free number for a document type. Concurrent
// callers in the same process are serialized per scope with a mutex; the
// repository adds its own cross-process guard (advisory lock on Postgres),
// so two app instances cannot hand out the same number either.
type Allocator struct {
	repo repository.DocumentNumberRepository
	cfg  config.NumberingConfig
	log  *logger.Logger

	mu     sync.Mutex
	scopes map[string]*sync.Mutex
}

// NewAllocator constructs the allocator.
func NewAllocator(repo repository.DocumentNumberRepository, cfg config.NumberingConfig, log *logger.Logger) *Allocator {
	return &Allocator{
		repo:   repo,
		cfg:    cfg,
		log:    log,
		scopes: make(map[string]*sync.Mutex),
	}
}

// NextNumber resolves, reserves and returns the next number for the company,
// document type and date. The whole read-resolve-persist cycle runs inside
// one critical section so two concurrent calls can never observe the same
// history.
func (a *Allocator) NextNumber(ctx context.Context, companyID string, docType entity.DocumentType, date time.Time) (string, error) {
	format, minCounter, err := a.formatFor(docType)
	if err != nil {
		return "", err
	}
	if err := numbering.Validate(format); err != nil {
		return "", fmt.Errorf("numbering: format %q: %w", format, err)
	}
	if numbering.IsLiteral(format) {
		// A constant format resolves to the same number on every call; the
		// second allocation can only fail with a duplicate.
		a.log.Warn().
			Str("type", string(docType)).
			Str("format", format).
			Msg("number format contains neither date tokens nor a sequence run")
	}

	scope := numbering.ScopePrefix(format, date)

	lock := a.scopeLock(companyID, docType, scope)
	lock.Lock()
	defer lock.Unlock()

	existing, err := a.repo.ListByScope(ctx, companyID, docType, scope)
	if err != nil {
		return "", fmt.Errorf("numbering: list scope %q: %w", scope, err)
	}

	number, err := numbering.Next(format, existing, date, minCounter)
	if err != nil {
		return "", fmt.Errorf("numbering: scope %q: %w", scope, err)
	}

	err = a.repo.Reserve(ctx, &entity.DocumentNumber{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		Type:       docType,
		Number:     number,
		Scope:      scope,
		AssignedAt: time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("numbering: reserve %s: %w", number, err)
	}

	a.log.Info().
		Str("company_id", companyID).
		Str("type", string(docType)).
		Str("number", number).
		Msg("document number assigned")
	return number, nil
}

// Preview resolves the number a given counter would produce, without touching
// the store. Used by operators to check a format before activating it.
func (a *Allocator) Preview(docType entity.DocumentType, counter int, date time.Time) (string, error) {
	format, _, err := a.formatFor(docType)
	if err != nil {
		return "", err
	}
	if err := numbering.Validate(format); err != nil {
		return "", fmt.Errorf("numbering: format %q: %w", format, err)
	}
	return numbering.Resolve(format, counter, date), nil
}

func (a *Allocator) formatFor(docType entity.DocumentType) (format string, minCounter int, err error) {
	switch docType {
	case entity.DocumentTypeInvoice:
		return a.cfg.InvoiceFormat, a.cfg.InvoiceMinCounter, nil
	case entity.DocumentTypeOffer:
		return a.cfg.OfferFormat, a.cfg.OfferMinCounter, nil
	default:
		return "", 0, fmt.Errorf("numbering: document type %q: %w", docType, domain.ErrInvalidInput)
	}
}

// scopeLock returns the mutex guarding one (company, type, scope) sequence,
// creating it on first use.
func (a *Allocator) scopeLock(companyID string, docType entity.DocumentType, scope string) *sync.Mutex {
	key := companyID + "|" + string(docType) + "|" + scope
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.scopes[key]
	if !ok {
		lock = &sync.Mutex{}
		a.scopes[key] = lock
	}
	return lock
}
