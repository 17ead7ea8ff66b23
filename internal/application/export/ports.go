package export

import "context"

// XMLSerializer turns a compliance document into standard-conforming XML
// (UBL for XRechnung, CII for ZUGFeRD).
type XMLSerializer interface {
	Serialize(doc *ComplianceDocument) ([]byte, error)
}

// PDFRenderer produces the graphical representation of the document.
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, doc *ComplianceDocument) ([]byte, error)
}

// XMLAttacher embeds an XML file into a PDF container. A failure here is
// fatal for a ZUGFeRD export: without the embedded XML the artifact is not a
// valid hybrid invoice.
type XMLAttacher interface {
	Attach(pdf []byte, filename string, xml []byte, description string) ([]byte, error)
}
