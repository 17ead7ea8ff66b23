package zugferd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Attacher embeds the invoice XML into the PDF container using pdfcpu.
// The embedded file is what makes the PDF a machine-readable invoice; every
// error here is fatal for the export.
type Attacher struct{}

// NewAttacher creates the attacher.
func NewAttacher() *Attacher {
	return &Attacher{}
}

// Attach embeds xmlBytes as an attachment named filename into the given PDF
// and returns the rewritten container bytes.
func (a *Attacher) Attach(pdf []byte, filename string, xmlBytes []byte, description string) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("zugferd: empty PDF input")
	}
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("zugferd: empty XML attachment")
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("zugferd: read PDF container: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("zugferd: validate PDF container: %w", err)
	}

	now := time.Now()
	attachment := model.Attachment{
		Reader:   bytes.NewReader(xmlBytes),
		ID:       filename,
		FileName: filename,
		Desc:     description,
		ModTime:  &now,
	}
	if err := ctx.AddAttachment(attachment, false); err != nil {
		return nil, fmt.Errorf("zugferd: add attachment %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("zugferd: write PDF container: %w", err)
	}
	return buf.Bytes(), nil
}
