package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/export"
	"github.com/dgallion1/folio/internal/loader"
	"github.com/dgallion1/folio/internal/reflow"
	"github.com/dgallion1/folio/internal/render"
)

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func options(cmd *cli.Command) reflow.Options {
	return reflow.Options{ConstrainWidth: cmd.Bool("constrain-width")}
}

// output opens the --out destination, or STDOUT.
func output(cmd *cli.Command) (io.WriteCloser, error) {
	name := cmd.String("out")
	if name == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// withOutput runs write against the --out destination and closes it.
func withOutput(cmd *cli.Command, write func(io.Writer) error) error {
	w, err := output(cmd)
	if err != nil {
		return err
	}
	return writeAndClose(w, write)
}

// writeAndClose reports the write error first, then the close error.
func writeAndClose(w io.WriteCloser, write func(io.Writer) error) error {
	err := write(w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	return err
}

func writeOutput(cmd *cli.Command, data string) error {
	return withOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, data)
		return err
	})
}

func runFile(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("expected exactly one PAGE.html argument")
	}
	log := newLogger(cmd)
	name := cmd.Args().First()

	book := cmd.String("book")
	if book == "" {
		book = bookFromFile(name)
	}

	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	root, err := loader.ParsePage(f, book)
	if err != nil {
		return err
	}
	width, height := loader.ApplyBounds(root)
	stats, err := reflow.ReconstructAll(root, options(cmd))
	if err != nil {
		return fmt.Errorf("reconstruct page: %w", err)
	}

	markup, err := dom.Render(root)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	log.Info("page reconstructed",
		"file", name,
		"containers", stats.Containers,
		"blocks", stats.Blocks,
		"removed", stats.Removed,
		"width", width,
		"height", height,
	)
	return writeOutput(cmd, markup+"\n")
}

// bookFromFile derives the book name from the location of a page file:
// pages live in a directory named after their book. A page outside any
// directory is named after itself.
func bookFromFile(name string) string {
	if dir := filepath.Base(filepath.Dir(name)); dir != "." && dir != string(filepath.Separator) {
		return dir
	}
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func newRenderer(cmd *cli.Command, log *slog.Logger) (*render.Renderer, error) {
	cat, err := catalog.Load(cmd.String("catalog"))
	if err != nil {
		return nil, err
	}
	pages := loader.New(os.DirFS(cmd.String("books")), log)
	return render.NewRenderer(pages, cat, options(cmd), render.NewCache(time.Minute), render.NewStats(time.Hour), log), nil
}

func renderPage(ctx context.Context, cmd *cli.Command, log *slog.Logger) (*render.Result, error) {
	r, err := newRenderer(cmd, log)
	if err != nil {
		return nil, err
	}
	res, err := r.Render(ctx, cmd.String("book"), int(cmd.Int("page")))
	if err != nil {
		return nil, err
	}
	log.Info("page reconstructed",
		"book", res.Book,
		"page", res.Page,
		"blocks", res.Stats.Blocks,
		"removed", res.Stats.Removed,
		"etag", res.ETag,
	)
	return res, nil
}

func runPage(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	res, err := renderPage(ctx, cmd, log)
	if err != nil {
		return err
	}
	return writeOutput(cmd, res.HTML+"\n")
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	res, err := renderPage(ctx, cmd, log)
	if err != nil {
		return err
	}
	root, err := dom.ParseElement(res.HTML)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s, page %d", res.Book, res.Page)
	return withOutput(cmd, func(w io.Writer) error {
		n, err := export.WriteDOCX(w, title, root)
		if err != nil {
			return err
		}
		log.Info("page exported", "paragraphs", n)
		return nil
	})
}
