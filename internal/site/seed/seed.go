// Package seed loads site content from a YAML file into a content store.
package seed

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/louisbranch/pageloader/internal/site/content"
	"gopkg.in/yaml.v3"
)

// Content is the YAML document shape.
type Content struct {
	Settings map[string]string `yaml:"settings"`
	Pages    []Page            `yaml:"pages"`
}

// Page is one page entry in the YAML document.
type Page struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Body    string `yaml:"body"`
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (Content, error) {
	var doc Content
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Content{}, fmt.Errorf("decode seed yaml: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Pages))
	for i, page := range doc.Pages {
		slug := strings.TrimSpace(page.Slug)
		if slug == "" {
			return Content{}, fmt.Errorf("page %d: slug is required", i)
		}
		if strings.TrimSpace(page.Title) == "" {
			return Content{}, fmt.Errorf("page %q: title is required", slug)
		}
		if _, dup := seen[slug]; dup {
			return Content{}, fmt.Errorf("page %q: duplicate slug", slug)
		}
		seen[slug] = struct{}{}
		doc.Pages[i].Slug = slug
	}
	return doc, nil
}

// LoadFile reads and parses the YAML document at path.
func LoadFile(path string) (Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Apply writes doc into w. Settings are written in key order, then pages in
// document order.
func Apply(ctx context.Context, w content.Writer, doc Content) error {
	keys := make([]string, 0, len(doc.Settings))
	for key := range doc.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := w.PutSetting(ctx, key, doc.Settings[key]); err != nil {
			return fmt.Errorf("seed setting %q: %w", key, err)
		}
	}
	for _, page := range doc.Pages {
		if err := w.PutPage(ctx, content.Page{
			Slug:    page.Slug,
			Title:   page.Title,
			Summary: page.Summary,
			Body:    page.Body,
		}); err != nil {
			return fmt.Errorf("seed page %q: %w", page.Slug, err)
		}
	}
	return nil
}
