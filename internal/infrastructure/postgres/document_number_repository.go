package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/repository"
)

var _ repository.DocumentNumberRepository = (*DocumentNumberRepo)(nil)

// DocumentNumberRepo implements DocumentNumberRepository on PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE document_numbers (
//	    id          uuid PRIMARY KEY,
//	    company_id  text NOT NULL,
//	    doc_type    text NOT NULL,
//	    number      text NOT NULL,
//	    scope       text NOT NULL,
//	    assigned_at timestamptz NOT NULL,
//	    UNIQUE (company_id, doc_type, number)
//	);
//	CREATE INDEX document_numbers_scope_idx
//	    ON document_numbers (company_id, doc_type, scope);
type DocumentNumberRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentNumberRepository constructs the repository.
func NewDocumentNumberRepository(pool *pgxpool.Pool) *DocumentNumberRepo {
	return &DocumentNumberRepo{pool: pool}
}

func (r *DocumentNumberRepo) ListByScope(ctx context.Context, companyID string, docType entity.DocumentType, scope string) ([]string, error) {
	const q = `
		SELECT number
		FROM document_numbers
		WHERE company_id = $1 AND doc_type = $2 AND scope = $3`
	rows, err := r.pool.Query(ctx, q, companyID, string(docType), scope)
	if err != nil {
		return nil, fmt.Errorf("list document_numbers: %w", err)
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan document_number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// Reserve inserts the assignment inside one transaction. An advisory lock
// keyed on (company, type, scope) serializes allocations across processes;
// the unique constraint on (company_id, doc_type, number) is the final
// backstop and surfaces as domain.ErrDuplicateNumber.
func (r *DocumentNumberRepo) Reserve(ctx context.Context, num *entity.DocumentNumber) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockKey := num.CompanyID + "|" + string(num.Type) + "|" + num.Scope
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("advisory lock %q: %w", lockKey, err)
	}

	const q = `
		INSERT INTO document_numbers
			(id, company_id, doc_type, number, scope, assigned_at)
		VALUES
			($1, $2, $3, $4, $5, $6)`
	_, err = tx.Exec(ctx, q,
		num.ID, num.CompanyID, string(num.Type), num.Number, num.Scope, num.AssignedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("number %s already assigned: %w", num.Number, domain.ErrDuplicateNumber)
		}
		return fmt.Errorf("insert document_number: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
