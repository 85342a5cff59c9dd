package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFAQ_ReadWrite(t *testing.T) {
	dir := t.TempDir()
	b := NewBase(nil, nil, "test", "", filepath.Join(dir, "base", "faq.md"))

	// Missing file reads as empty, not as an error
	text, err := b.FAQ(context.Background())
	if err != nil {
		t.Fatalf("missing FAQ should not error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty FAQ, got %q", text)
	}

	if err := b.SaveFAQ("# FAQ\nКак оформить заказ?"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	text, err = b.FAQ(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if text != "# FAQ\nКак оформить заказ?\n" {
		t.Errorf("unexpected FAQ content: %q", text)
	}
}

func TestSearch_NoIndex(t *testing.T) {
	b := NewBase(nil, nil, "test", "", "faq.md")
	if _, err := b.Search(context.Background(), "доставка", 5); !errors.Is(err, ErrNoIndex) {
		t.Errorf("expected ErrNoIndex, got %v", err)
	}
}

func TestLoadDocument_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# База знаний\nтекст"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	text, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if text != "# База знаний\nтекст" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestLoadDocument_Missing(t *testing.T) {
	if _, err := LoadDocument("no/such/file.md"); err == nil {
		t.Errorf("expected error for missing document")
	}
}
