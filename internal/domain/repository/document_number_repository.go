package repository

import (
	"context"

	"github.com/rechnungswerk/fiscal/internal/domain/entity"
)

// DocumentNumberRepository is the persistence port for assigned document
// numbers.
type DocumentNumberRepository interface {
	// ListByScope returns every number already assigned for the company,
	// document type and scope prefix. This is the critical query before an
	// allocation: the next counter is derived from the highest sequential
	// found here.
	ListByScope(ctx context.Context, companyID string, docType entity.DocumentType, scope string) ([]string, error)

	// Reserve persists the assignment. Implementations must reject a number
	// that already exists for the company and type with domain.ErrDuplicateNumber.
	Reserve(ctx context.Context, num *entity.DocumentNumber) error
}
