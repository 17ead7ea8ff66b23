package export

import (
	"context"
	"fmt"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/pkg/einvoice"
	"github.com/rechnungswerk/fiscal/pkg/logger"
)

// Service runs the full export pipeline: build the compliance document,
// serialize it to XML and, for ZUGFeRD, render the PDF and embed the XML.
type Service struct {
	builder *Builder
	ubl     XMLSerializer // XRechnung (UBL)
	cii     XMLSerializer // ZUGFeRD (CII)
	pdf     PDFRenderer
	attach  XMLAttacher
	log     *logger.Logger
}

// NewService wires the export pipeline.
func NewService(ubl, cii XMLSerializer, pdf PDFRenderer, attach XMLAttacher, log *logger.Logger) *Service {
	return &Service{
		builder: NewBuilder(),
		ubl:     ubl,
		cii:     cii,
		pdf:     pdf,
		attach:  attach,
		log:     log,
	}
}

// ExportXRechnung builds the document and serializes it as XRechnung UBL XML.
func (s *Service) ExportXRechnung(_ context.Context, inv *entity.Invoice, seller *entity.Seller, customer *entity.Customer) (*ExportResult, error) {
	doc, warnings, err := s.builder.Build(inv, seller, customer)
	if err != nil {
		return nil, err
	}
	s.logWarnings(inv.Number, "xrechnung", warnings)

	xml, err := s.ubl.Serialize(doc)
	if err != nil {
		return nil, fmt.Errorf("export: serialize xrechnung %s: %w", inv.Number, err)
	}
	return &ExportResult{
		Bytes:    xml,
		Filename: fmt.Sprintf("XRechnung_%s.xml", inv.Number),
		MIME:     "application/xml",
		Warnings: warnings,
	}, nil
}

// ExportZUGFeRD builds the document, renders its PDF and embeds the CII XML
// as factur-x.xml. A failed embed is fatal: the hybrid artifact is the whole
// point of the format, a bare PDF must not be handed out as ZUGFeRD.
func (s *Service) ExportZUGFeRD(ctx context.Context, inv *entity.Invoice, seller *entity.Seller, customer *entity.Customer) (*ExportResult, error) {
	doc, warnings, err := s.builder.Build(inv, seller, customer)
	if err != nil {
		return nil, err
	}
	s.logWarnings(inv.Number, "zugferd", warnings)

	xml, err := s.cii.Serialize(doc)
	if err != nil {
		return nil, fmt.Errorf("export: serialize cii %s: %w", inv.Number, err)
	}
	pdf, err := s.pdf.RenderInvoice(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRenderFailed, inv.Number, err)
	}
	hybrid, err := s.attach.Attach(pdf, einvoice.ZUGFeRDAttachmentName, xml, "Factur-X/ZUGFeRD invoice data")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMergeFailed, inv.Number, err)
	}
	return &ExportResult{
		Bytes:    hybrid,
		Filename: fmt.Sprintf("ZUGFeRD_%s.pdf", inv.Number),
		MIME:     "application/pdf",
		Warnings: warnings,
	}, nil
}

func (s *Service) logWarnings(number, format string, warnings []Warning) {
	if s.log == nil {
		return
	}
	for _, w := range warnings {
		s.log.Warn().
			Str("document", number).
			Str("format", format).
			Str("field", w.Field).
			Msg(w.Message)
	}
}
