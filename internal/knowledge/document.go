package knowledge

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadDocument reads the knowledge document from disk. PDF files are
// extracted page by page; anything else is treated as UTF-8 text.
func LoadDocument(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document not found: %s", path)
	}

	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return loadPDF(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(raw), nil
}

func loadPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue // Skip empty pages
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("[Knowledge] Warning: failed to extract text from page %d: %v", i, err)
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
