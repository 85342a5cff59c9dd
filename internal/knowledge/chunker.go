package knowledge

import (
	"regexp"
	"strings"
)

// Chunk is one header-delimited section of the knowledge document.
type Chunk struct {
	Content string
	Header1 string
	Header2 string
}

var headerRe = regexp.MustCompile(`(?m)^(#{1,2}) (.+)$`)

// DuplicateHeaders repeats every level-1/2 heading as plain text right
// below it, so the heading words end up inside the chunk body and carry
// weight in the embedding.
func DuplicateHeaders(text string) string {
	return headerRe.ReplaceAllStringFunc(text, func(match string) string {
		plain := strings.TrimSpace(strings.TrimLeft(match, "# "))
		return match + "\n" + plain
	})
}

// SplitByHeaders cuts the document into sections at # and ## headings.
// Text before the first heading becomes a headerless chunk; blank
// sections are dropped.
func SplitByHeaders(text string) []Chunk {
	lines := strings.Split(text, "\n")

	var chunks []Chunk
	var current Chunk
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			current.Content = content
			chunks = append(chunks, current)
		}
		body = nil
	}

	for _, line := range lines {
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			body = append(body, line)
			continue
		}
		flush()
		title := strings.TrimSpace(m[2])
		if m[1] == "#" {
			current = Chunk{Header1: title}
		} else {
			current = Chunk{Header1: current.Header1, Header2: title}
		}
	}
	flush()
	return chunks
}
