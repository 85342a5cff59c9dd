package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/qdrant/go-client/qdrant"
)

// ErrNoIndex is returned when no index generation has been built yet.
var ErrNoIndex = errors.New("knowledge index not built")

// Base is the knowledge side of the assistant: the FAQ file, the source
// document, and the semantic index. The current index generation sits
// behind an atomic pointer, so a rebuild publishes a fully built
// replacement in one step and in-flight searches keep using the old one.
type Base struct {
	client       *qdrant.Client
	embedder     *Embedder
	collection   string
	documentPath string
	faqPath      string
	current      atomic.Pointer[Index]
}

func NewBase(client *qdrant.Client, embedder *Embedder, collection, documentPath, faqPath string) *Base {
	return &Base{
		client:       client,
		embedder:     embedder,
		collection:   collection,
		documentPath: documentPath,
		faqPath:      faqPath,
	}
}

// Rebuild loads the document, chunks it, builds a new index generation
// and swaps it in. The previous generation is dropped afterwards.
func (b *Base) Rebuild(ctx context.Context) error {
	text, err := LoadDocument(b.documentPath)
	if err != nil {
		return err
	}
	chunks := SplitByHeaders(DuplicateHeaders(text))

	ix, err := BuildIndex(ctx, b.client, b.collection, b.embedder, chunks)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	old := b.current.Swap(ix)
	if old != nil {
		old.Drop(ctx)
	}
	log.Printf("[Knowledge] Index rebuilt")
	return nil
}

// Search queries the current index generation.
func (b *Base) Search(ctx context.Context, query string, k int) ([]Result, error) {
	ix := b.current.Load()
	if ix == nil {
		return nil, ErrNoIndex
	}
	return ix.Search(ctx, query, k)
}

// Document returns the raw text of the knowledge document.
func (b *Base) Document() (string, error) {
	return LoadDocument(b.documentPath)
}

// FAQ reads the FAQ file; a missing file is an empty FAQ, not an error.
func (b *Base) FAQ(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(b.faqPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Knowledge] FAQ file not found: %s", b.faqPath)
			return "", nil
		}
		return "", fmt.Errorf("failed to read FAQ: %w", err)
	}
	return string(raw), nil
}

// SaveFAQ overwrites the FAQ file, creating its directory if needed.
func (b *Base) SaveFAQ(text string) error {
	if dir := filepath.Dir(b.faqPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create FAQ directory: %w", err)
		}
	}
	if err := os.WriteFile(b.faqPath, []byte(strings.TrimRight(text, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write FAQ: %w", err)
	}
	return nil
}
