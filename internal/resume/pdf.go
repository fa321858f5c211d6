package resume

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	pdfextractor "github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// readPDF flattens a PDF resume to text, page by page. Pages that fail to
// extract are skipped so one damaged page does not lose the whole document.
func readPDF(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	reader, err := model.NewPdfReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	pages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("counting pdf pages: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := pdfextractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("pdf %s contains no extractable text", path)
	}
	return out, nil
}
