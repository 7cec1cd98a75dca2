// Package catalog describes the books folio can serve and the tag
// configuration that drives selection on their pages.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/folio/internal/selection"
)

// ErrUnknownBook is returned for titles missing from the catalog.
var ErrUnknownBook = errors.New("unknown book")

// Book is one entry of the catalog. Pages is the highest page index; page 0
// is the first page.
type Book struct {
	Title       string `yaml:"title" json:"title"`
	Pages       int    `yaml:"pages" json:"pages"`
	Description string `yaml:"description,omitempty" json:"-"` // Markdown
}

// HasPage reports whether n is a valid page index for the book.
func (b Book) HasPage(n int) bool {
	return n >= 0 && n <= b.Pages
}

// Catalog is the list of served books plus selection configuration.
type Catalog struct {
	Books []Book         `yaml:"books"`
	Tags  selection.Tags `yaml:"tags"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Books: []Book{
			{Title: "CHNL60L_03_p59-90", Pages: 31},
			{Title: "TITO5AW_02_p55-92_CORR-2018", Pages: 37},
			{Title: "PICON30W_CHAP2", Pages: 13},
		},
		Tags: selection.DefaultTags(),
	}
}

// Load reads a YAML catalog. An empty path yields the built-in catalog.
// Missing tag lists fall back to the defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	defaults := selection.DefaultTags()
	if len(c.Tags.Selectable) == 0 {
		c.Tags.Selectable = defaults.Selectable
	}
	if len(c.Tags.Promoted) == 0 {
		c.Tags.Promoted = defaults.Promoted
	}
	for i, b := range c.Books {
		if b.Title == "" {
			return nil, fmt.Errorf("book %d: title is required", i)
		}
		if b.Pages < 0 {
			return nil, fmt.Errorf("book %q: pages must not be negative", b.Title)
		}
	}
	return &c, nil
}

// Find returns the book with the given title.
func (c *Catalog) Find(title string) (Book, error) {
	for _, b := range c.Books {
		if b.Title == title {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("%w: %s", ErrUnknownBook, title)
}

// DescriptionHTML renders the Markdown description of b.
func DescriptionHTML(b Book) (string, error) {
	if b.Description == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(b.Description), &buf); err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	return buf.String(), nil
}
