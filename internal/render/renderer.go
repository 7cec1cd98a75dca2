// Package render turns book pages into reconstructed page markup. Rendered
// pages are cached for a while; whole books can be prerendered through a
// bounded job queue served by a worker pool.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/loader"
	"github.com/dgallion1/folio/internal/reflow"
)

// PageLoader loads a raw page.
type PageLoader interface {
	Load(ctx context.Context, book string, n int) (*loader.Page, error)
}

// Result is a rendered page. It is shared between callers and must not be
// modified.
type Result struct {
	Book       string       `json:"book"`
	Page       int          `json:"page"`
	HTML       string       `json:"html"`
	Styles     []string     `json:"styles"`
	Scripts    []string     `json:"scripts"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Stats      reflow.Stats `json:"stats"`
	ETag       string       `json:"etag"`
	RenderedAt time.Time    `json:"rendered_at"`
}

// Renderer loads, reconstructs and caches pages.
type Renderer struct {
	pages   PageLoader
	catalog *catalog.Catalog
	opts    reflow.Options
	cache   *Cache
	stats   *Stats
	log     *slog.Logger
}

func NewRenderer(pages PageLoader, cat *catalog.Catalog, opts reflow.Options, cache *Cache, stats *Stats, log *slog.Logger) *Renderer {
	return &Renderer{
		pages:   pages,
		catalog: cat,
		opts:    opts,
		cache:   cache,
		stats:   stats,
		log:     log,
	}
}

// Catalog returns the catalog pages are validated against.
func (r *Renderer) Catalog() *catalog.Catalog {
	return r.catalog
}

// Stats returns the renderer's latency stats.
func (r *Renderer) Stats() *Stats {
	return r.stats
}

// Render returns page n of book, from cache when possible.
func (r *Renderer) Render(ctx context.Context, book string, n int) (*Result, error) {
	b, err := r.catalog.Find(book)
	if err != nil {
		return nil, err
	}
	if !b.HasPage(n) {
		return nil, fmt.Errorf("%w: %s has pages 0-%d, requested %d", loader.ErrPageNotFound, book, b.Pages, n)
	}

	key := cacheKey(book, n)
	if res, ok := r.cache.Get(key); ok {
		r.stats.CacheHit()
		return res, nil
	}
	r.stats.CacheMiss()

	start := time.Now()
	page, err := r.pages.Load(ctx, book, n)
	if err != nil {
		return nil, fmt.Errorf("load %s page %d: %w", book, n, err)
	}

	width, height := loader.ApplyBounds(page.Root)
	stats, err := reflow.ReconstructAll(page.Root, r.opts)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s page %d: %w", book, n, err)
	}

	markup, err := dom.Render(page.Root)
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", book, n, err)
	}

	res := &Result{
		Book:       book,
		Page:       n,
		HTML:       markup,
		Styles:     page.Styles,
		Scripts:    page.Scripts,
		Width:      width,
		Height:     height,
		Stats:      stats,
		ETag:       ContentHashHex([]byte(markup)),
		RenderedAt: time.Now(),
	}
	r.cache.Put(key, res)

	elapsed := time.Since(start)
	r.stats.Record(elapsed.Milliseconds())
	r.log.Debug("page rendered",
		"book", book,
		"page", n,
		"blocks", stats.Blocks,
		"removed", stats.Removed,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

func cacheKey(book string, n int) string {
	return fmt.Sprintf("%s/%d", book, n)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
