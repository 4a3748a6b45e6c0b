package ingest

import (
	"strings"
	"unicode"
)

// Chunker splits document text into pieces sized for embedding.
// Paragraph boundaries are preferred, falling back to sentence
// boundaries for oversized paragraphs, with a character overlap
// carried between adjacent chunks to preserve context.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	return &Chunker{size: size, overlap: overlap}
}

// Split breaks content into chunks of at most the configured size.
// Short content comes back as a single chunk.
func (c *Chunker) Split(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= c.size {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para) > c.size {
			flush()
		}

		if len(para) > c.size {
			flush()
			chunks = append(chunks, c.splitSentences(para)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return c.applyOverlap(chunks)
}

// splitSentences packs sentences into chunks up to the configured size.
func (c *Chunker) splitSentences(text string) []string {
	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current.Len()+len(sentence) > c.size && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// sentences splits text at terminal punctuation followed by space.
func sentences(text string) []string {
	var out []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		// Skip likely abbreviations such as "Dr."
		if i > 1 && unicode.IsUpper(runes[i-1]) {
			continue
		}
		out = append(out, current.String())
		current.Reset()
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// applyOverlap prefixes each chunk after the first with the tail of its
// predecessor, cut at a word boundary.
func (c *Chunker) applyOverlap(chunks []string) []string {
	if c.overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}
	out := make([]string, len(chunks))
	copy(out, chunks)
	for i := 1; i < len(out); i++ {
		prev := out[i-1]
		if len(prev) <= c.overlap {
			continue
		}
		tail := prev[len(prev)-c.overlap:]
		if idx := strings.LastIndex(tail, " "); idx > 0 {
			tail = tail[idx+1:]
		}
		out[i] = tail + " " + out[i]
	}
	return out
}
