package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rechnungswerk/fiscal/internal/application/export"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/infrastructure/pdf"
	"github.com/rechnungswerk/fiscal/internal/infrastructure/xrechnung"
	"github.com/rechnungswerk/fiscal/internal/infrastructure/zugferd"
	"github.com/rechnungswerk/fiscal/pkg/config"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

func newExportCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an invoice as XRechnung or ZUGFeRD",
	}

	var (
		inFile string
		outDir string
	)
	addFlags := func(c *cobra.Command) *cobra.Command {
		c.Flags().StringVar(&inFile, "in", "", "invoice JSON file (required)")
		c.Flags().StringVar(&outDir, "out", ".", "output directory")
		_ = c.MarkFlagRequired("in")
		return c
	}

	svc := export.NewService(
		xrechnung.NewSerializer(),
		zugferd.NewCIIBuilder(),
		pdf.NewMarotoRenderer(),
		zugferd.NewAttacher(),
		log,
	)

	cmd.AddCommand(addFlags(&cobra.Command{
		Use:     "xrechnung",
		Short:   "Write the invoice as XRechnung UBL XML",
		Example: `  fiscal export xrechnung --in invoice.json --out ./artifacts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, customer, err := readInvoiceFile(inFile, cfg)
			if err != nil {
				return err
			}
			res, err := svc.ExportXRechnung(cmd.Context(), inv, sellerFromConfig(cfg.Seller), customer)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, res, outDir)
		},
	}))

	cmd.AddCommand(addFlags(&cobra.Command{
		Use:     "zugferd",
		Short:   "Write the invoice as ZUGFeRD PDF with embedded Factur-X XML",
		Example: `  fiscal export zugferd --in invoice.json --out ./artifacts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, customer, err := readInvoiceFile(inFile, cfg)
			if err != nil {
				return err
			}
			res, err := svc.ExportZUGFeRD(cmd.Context(), inv, sellerFromConfig(cfg.Seller), customer)
			if err != nil {
				return err
			}
			return writeArtifact(cmd, res, outDir)
		},
	}))

	return cmd
}

func writeArtifact(cmd *cobra.Command, res *export.ExportResult, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, res.Filename)
	if err := os.WriteFile(path, res.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Field, w.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// ── invoice JSON input ────────────────────────────────────────────────────────

// invoiceFile is the on-disk document format the export commands consume.
// The seller comes from configuration, not from the file.
type invoiceFile struct {
	Invoice  invoiceInput  `json:"invoice"`
	Customer customerInput `json:"customer"`
}

type invoiceInput struct {
	Number         string           `json:"number"`
	Type           string           `json:"type"` // invoice (default) or offer
	Date           string           `json:"date"` // YYYY-MM-DD
	DueDate        string           `json:"due_date,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	DefaultTaxRate decimal.Decimal  `json:"default_tax_rate"`
	ReverseCharge  bool             `json:"reverse_charge,omitempty"`
	ExemptionType  string           `json:"exemption_type,omitempty"`
	BuyerVATID     string           `json:"buyer_vat_id,omitempty"`
	Skonto         *skontoInput     `json:"skonto,omitempty"`
	Items          []lineItemInput  `json:"items"`
}

type skontoInput struct {
	Percent decimal.Decimal `json:"percent"`
	Days    int             `json:"days"`
}

type lineItemInput struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Unit        string           `json:"unit,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Discount    *discountInput   `json:"discount,omitempty"`
}

type discountInput struct {
	Type  string          `json:"type"` // percentage or fixed
	Value decimal.Decimal `json:"value"`
}

type customerInput struct {
	Name      string `json:"name"`
	Street    string `json:"street,omitempty"`
	Zip       string `json:"zip,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
	VATNumber string `json:"vat_number,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func readInvoiceFile(path string, cfg *config.Config) (*entity.Invoice, *entity.Customer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	var in invoiceFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	date, err := parseDate(in.Invoice.Date)
	if err != nil {
		return nil, nil, err
	}

	docType := entity.DocumentType(in.Invoice.Type)
	if in.Invoice.Type == "" {
		docType = entity.DocumentTypeInvoice
	}

	inv := &entity.Invoice{
		Type:           docType,
		Number:         in.Invoice.Number,
		Date:           date,
		Currency:       in.Invoice.Currency,
		DefaultTaxRate: in.Invoice.DefaultTaxRate,
		ReverseCharge:  in.Invoice.ReverseCharge,
		ExemptionType:  in.Invoice.ExemptionType,
		BuyerVATID:     in.Invoice.BuyerVATID,
	}

	if in.Invoice.DueDate != "" {
		due, err := time.Parse("2006-01-02", in.Invoice.DueDate)
		if err != nil {
			return nil, nil, fmt.Errorf("parse due_date %q: %w", in.Invoice.DueDate, err)
		}
		inv.DueDate = &due
	} else if cfg.Payment.TermsDays > 0 {
		due := date.AddDate(0, 0, cfg.Payment.TermsDays)
		inv.DueDate = &due
	}

	if in.Invoice.Skonto != nil {
		inv.Skonto = &entity.SkontoTerms{
			Percent: in.Invoice.Skonto.Percent,
			Days:    in.Invoice.Skonto.Days,
		}
	}

	for i, item := range in.Invoice.Items {
		li := entity.LineItem{
			Position:    i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Unit:        item.Unit,
			TaxRate:     item.TaxRate,
		}
		if item.Discount != nil {
			li.Discount = &entity.Discount{
				Type:  entity.DiscountType(item.Discount.Type),
				Value: item.Discount.Value,
			}
		}
		inv.Items = append(inv.Items, li)
	}

	customer := &entity.Customer{
		Name:      in.Customer.Name,
		Street:    in.Customer.Street,
		Zip:       in.Customer.Zip,
		City:      in.Customer.City,
		Country:   in.Customer.Country,
		VATNumber: in.Customer.VATNumber,
		Email:     in.Customer.Email,
		Phone:     in.Customer.Phone,
	}
	return inv, customer, nil
}

func sellerFromConfig(s config.SellerConfig) *entity.Seller {
	return &entity.Seller{
		Name:          s.Name,
		Street:        s.Street,
		Zip:           s.Zip,
		City:          s.City,
		Country:       s.Country,
		VATID:         s.VATID,
		TaxNumber:     s.TaxNumber,
		Email:         s.Email,
		Phone:         s.Phone,
		IBAN:          s.IBAN,
		BIC:           s.BIC,
		BankName:      s.BankName,
		SmallBusiness: s.SmallBusiness,
	}
}
