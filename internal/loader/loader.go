// Package loader reads book pages and their web resources from a book
// directory and turns them into page trees ready for reconstruction.
//
// A book directory looks like:
//
//	<book>/<book>.html, <book>/<book>-1.html, ...
//	<book>/<book>-web-resources/css/idGeneratedStyles.css
//	<book>/<book>-web-resources/script/FontData.js
//	<book>/<book>-web-resources/image/...
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// ErrPageNotFound is returned when a page file does not exist.
var ErrPageNotFound = errors.New("page not found")

// Resource files loaded with every page.
var (
	StandardCSSFiles    = []string{"idGeneratedStyles.css"}
	StandardScriptFiles = []string{"FontData.js"}
)

// Page is a loaded, not yet reconstructed, page.
type Page struct {
	Book    string
	Number  int
	Root    *html.Node // <div id="page" class="page">
	Styles  []string   // rewritten stylesheets, in load order
	Scripts []string
}

// Loader reads pages from a file system rooted at the books directory.
type Loader struct {
	fsys        fs.FS
	log         *slog.Logger
	cssFiles    []string
	scriptFiles []string
}

// New creates a loader over fsys.
func New(fsys fs.FS, log *slog.Logger) *Loader {
	return &Loader{
		fsys:        fsys,
		log:         log,
		cssFiles:    StandardCSSFiles,
		scriptFiles: StandardScriptFiles,
	}
}

// PagePath returns the path of page n of book. Page 0 has no suffix.
func PagePath(book string, n int) string {
	name := book
	if n > 0 {
		name += "-" + strconv.Itoa(n)
	}
	return path.Join(book, name+".html")
}

func resourcePath(book, kind, name string) string {
	return path.Join(book, book+"-web-resources", kind, name)
}

// Load reads scripts, stylesheets and the page markup of page n of book.
// Missing scripts or stylesheets are logged and skipped; a missing page is
// reported as ErrPageNotFound.
func (l *Loader) Load(ctx context.Context, book string, n int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := l.log.With("book", book, "page", n)
	page := &Page{Book: book, Number: n}

	for _, name := range l.scriptFiles {
		data, err := fs.ReadFile(l.fsys, resourcePath(book, "script", name))
		if err != nil {
			log.Warn("script unavailable", "file", name, "error", err)
			continue
		}
		page.Scripts = append(page.Scripts, string(data))
	}

	for _, name := range l.cssFiles {
		data, err := fs.ReadFile(l.fsys, resourcePath(book, "css", name))
		if err != nil {
			log.Warn("stylesheet unavailable", "file", name, "error", err)
			continue
		}
		page.Styles = append(page.Styles, RewriteCSS(book, data))
	}

	f, err := l.fsys.Open(PagePath(book, n))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s page %d", ErrPageNotFound, book, n)
		}
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	root, err := ParsePage(f, book)
	if err != nil {
		return nil, err
	}
	page.Root = root
	return page, nil
}

// ParsePage extracts the first div of an exported page document and moves
// its content into a fresh page element. Image links are rewritten to be
// relative to the books directory.
func ParsePage(r io.Reader, book string) (*html.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	fixed := FixImageLinks(book, strings.TrimSpace(string(raw)))

	doc, err := html.Parse(strings.NewReader(fixed))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := NewPageElement()
	if content := dom.FindFirst(findBody(doc), "div"); content != nil {
		dom.MoveChildren(page, content)
	}
	return page, nil
}

// NewPageElement creates the relative-positioned container of a page.
func NewPageElement() *html.Node {
	page := dom.NewElement("div")
	dom.SetAttr(page, "id", "page")
	dom.AddClass(page, "page")
	dom.SetStyle(page, "position", "relative")
	return page
}

// FixImageLinks points exported image references at the book's resource folder.
func FixImageLinks(book, markup string) string {
	return strings.ReplaceAll(markup,
		book+"-web-resources/image",
		book+"/"+book+"-web-resources/image")
}

func findBody(n *html.Node) *html.Node {
	if b := dom.FindFirst(n, "body"); b != nil {
		return b
	}
	return n
}
