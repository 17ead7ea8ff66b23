package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appnumbering "github.com/rechnungswerk/fiscal/internal/application/numbering"
	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/numbering"
	"github.com/rechnungswerk/fiscal/internal/domain/repository"
	"github.com/rechnungswerk/fiscal/internal/infrastructure/postgres"
	"github.com/rechnungswerk/fiscal/pkg/config"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

func newNumberCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "number",
		Short: "Assign and preview document numbers",
	}
	cmd.AddCommand(newNumberNextCmd(cfg, log))
	cmd.AddCommand(newNumberPreviewCmd(cfg))
	return cmd
}

func newNumberNextCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	var (
		companyID    string
		docType      string
		dateStr      string
		existingFile string
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Reserve the next free number for a document type",
		Long: `Reserves the next free number. With --existing the numbers are
read from that file (one per line) and the new number is appended to
it; otherwise DATABASE_URL must point at the PostgreSQL store.`,
		Example: `  fiscal number next --type invoice --date 2026-03-01
  fiscal number next --type offer --existing numbers.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}

			repo, cleanup, err := numberStore(cmd.Context(), cfg, existingFile)
			if err != nil {
				return err
			}
			defer cleanup()

			alloc := appnumbering.NewAllocator(repo, cfg.Numbering, log)
			number, err := alloc.NextNumber(cmd.Context(), companyID, entity.DocumentType(docType), date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), number)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "default", "company identifier owning the sequence")
	cmd.Flags().StringVar(&docType, "type", "invoice", "document type: invoice or offer")
	cmd.Flags().StringVar(&dateStr, "date", "", "document date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&existingFile, "existing", "", "file with already assigned numbers, used when no database is configured")
	return cmd
}

func newNumberPreviewCmd(cfg *config.Config) *cobra.Command {
	var (
		format  string
		counter int
		dateStr string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Resolve a format for a given counter without reserving anything",
		Example: `  fiscal number preview --format "RE-{YYYY}-{####}" --counter 7
  fiscal number preview --counter 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Numbering.InvoiceFormat
			}
			if err := numbering.Validate(format); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), numbering.Resolve(format, counter, date))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "number format (default: configured invoice format)")
	cmd.Flags().IntVar(&counter, "counter", 1, "sequence counter to resolve")
	cmd.Flags().StringVar(&dateStr, "date", "", "document date (YYYY-MM-DD, default today)")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return date, nil
}

// numberStore picks the backing store. An --existing file always wins;
// PostgreSQL needs an explicit DATABASE_URL (DB_HOST carries a localhost
// default and says nothing about whether a database is actually there).
func numberStore(ctx context.Context, cfg *config.Config, existingFile string) (repository.DocumentNumberRepository, func(), error) {
	if existingFile != "" {
		return &fileNumberStore{path: existingFile}, func() {}, nil
	}
	if cfg.DB.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		return postgres.NewDocumentNumberRepository(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("neither DATABASE_URL nor --existing file given: %w", domain.ErrInvalidInput)
}

// fileNumberStore keeps assigned numbers in a text file, one per line. Meant
// for single-user CLI runs; concurrent safety comes from the allocator's
// in-process lock only.
type fileNumberStore struct {
	path string
}

func (f *fileNumberStore) ListByScope(_ context.Context, _ string, _ entity.DocumentType, scope string) ([]string, error) {
	assigned, err := f.readAll()
	if err != nil {
		return nil, err
	}
	var numbers []string
	for _, n := range assigned {
		if strings.HasPrefix(n, scope) {
			numbers = append(numbers, n)
		}
	}
	return numbers, nil
}

func (f *fileNumberStore) Reserve(_ context.Context, num *entity.DocumentNumber) error {
	assigned, err := f.readAll()
	if err != nil {
		return err
	}
	for _, n := range assigned {
		if n == num.Number {
			return fmt.Errorf("number %s already assigned: %w", num.Number, domain.ErrDuplicateNumber)
		}
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()
	if _, err := fmt.Fprintln(file, num.Number); err != nil {
		return fmt.Errorf("append to %s: %w", f.path, err)
	}
	return nil
}

func (f *fileNumberStore) readAll() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	var numbers []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if n := strings.TrimSpace(scanner.Text()); n != "" {
			numbers = append(numbers, n)
		}
	}
	return numbers, scanner.Err()
}
