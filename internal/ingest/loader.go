// Package ingest loads documents from disk, splits them into chunks
// and writes embedded chunks to the vector index.
package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Document is one source file staged for ingestion.
type Document struct {
	// Source is the path relative to the documents root.
	Source  string
	Title   string
	Content string
	Meta    map[string]any
}

var (
	frontmatterTitleKeys = []string{"title", "name"}
	h1Regex              = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// LoadDir reads every markdown and plain-text file under root,
// recursively. Hidden directories are skipped.
func LoadDir(root string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".markdown" && ext != ".txt" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, parseDocument(rel, string(raw)))
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "load documents from "+root, err)
	}
	return docs, nil
}

// parseDocument strips YAML frontmatter and resolves a title from the
// frontmatter, the first h1 heading, or the filename.
func parseDocument(source, content string) Document {
	doc := Document{Source: source, Meta: map[string]any{}}

	if strings.HasPrefix(content, "---\n") {
		if end := strings.Index(content[4:], "\n---"); end > 0 {
			var fm map[string]any
			if yaml.Unmarshal([]byte(content[4:4+end]), &fm) == nil && fm != nil {
				doc.Meta = fm
			}
			content = strings.TrimPrefix(content[4+end+4:], "\n")
		}
	}
	doc.Content = content

	for _, key := range frontmatterTitleKeys {
		if title, ok := doc.Meta[key].(string); ok && title != "" {
			doc.Title = title
			break
		}
	}
	if doc.Title == "" {
		if m := h1Regex.FindStringSubmatch(content); len(m) > 1 {
			doc.Title = strings.TrimSpace(m[1])
		}
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return doc
}
