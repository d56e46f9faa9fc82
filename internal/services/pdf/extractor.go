// Package pdf extracts the text layer of a PDF, page by page.
//
// We use the ledongthuc/pdf library for parsing. It's a pure Go
// implementation, no CGO or external dependencies required. Instead of its
// GetPlainText helper we walk each page's content stream ourselves so we
// can tell text-showing operators apart from positioning-only ones.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

// Result holds the output from a PDF text extraction.
type Result struct {
	Text      string // Extracted text, pages joined by a single space
	PageCount int
}

// Extractor turns PDF bytes into text. It holds no per-document state, so
// one Extractor can serve any number of concurrent conversions.
type Extractor struct {
	settings Settings
}

// NewExtractor creates an extractor bound to the frozen process settings.
func NewExtractor() *Extractor {
	return &Extractor{settings: CurrentSettings()}
}

// ExtractBlob reads the blob fully, then extracts it. Parsing does not start
// until every byte is in memory.
func (e *Extractor) ExtractBlob(blob *source.Blob) (*Result, error) {
	data, err := blob.ReadAll(e.settings.MaxPDFSize)
	if err != nil {
		return nil, models.NewConversionError(models.KindRead, "read blob", err)
	}
	return e.Extract(data)
}

// Extract parses data as a PDF and returns its text. Any page failing aborts
// the whole extraction; there is no partial result.
func (e *Extractor) Extract(data []byte) (*Result, error) {
	if !ValidatePDF(data) {
		return nil, models.NewConversionError(models.KindParse, "open", fmt.Errorf("missing %%PDF- header"))
	}

	pdfReader, err := open(data)
	if err != nil {
		return nil, models.NewConversionError(models.KindParse, "open", err)
	}

	pageCount := pdfReader.NumPage()
	pages := make([]string, 0, pageCount)

	// Pages are 1-indexed and processed strictly in order, one at a time.
	for i := 1; i <= pageCount; i++ {
		text, err := extractPage(pdfReader, i)
		if err != nil {
			return nil, models.NewConversionError(models.KindParse, fmt.Sprintf("page %d", i), err)
		}
		pages = append(pages, text)
	}

	return &Result{
		Text:      strings.Join(pages, " "),
		PageCount: pageCount,
	}, nil
}

// open wraps pdf.NewReader, turning parser panics into errors.
func open(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// extractPage loads one page and joins its text tokens.
func extractPage(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page: %v", rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page object not found")
	}
	return PageText(PageTokens(page)), nil
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// CountWords counts whitespace-separated words; used for log lines.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
