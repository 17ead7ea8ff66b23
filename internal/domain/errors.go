package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate resource")

	// Numbering configuration errors. A malformed format must stop document
	// creation; a colliding legal document number is a compliance violation.
	ErrInvalidFormat   = errors.New("invalid number format")
	ErrDuplicateNumber = errors.New("document number already assigned")
	ErrNumberExhausted = errors.New("number sequence exhausted for this scope")

	// Compliance export errors.
	ErrMissingSeller = errors.New("seller name is required for a compliance document")
	ErrMissingBuyer  = errors.New("buyer is required for a compliance document")
	ErrNotFiscal     = errors.New("document type cannot be exported as an e-invoice")
	ErrMergeFailed   = errors.New("embedding XML into the PDF container failed")
	ErrRenderFailed  = errors.New("rendering the PDF failed")
	ErrEmptyDocument = errors.New("document has no line items")
)
