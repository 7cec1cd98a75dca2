// Command reflow runs paragraph reconstruction on exported book pages
// without starting the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reflow:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            "reflow",
		Usage:           "reconstruct paragraphs of positioned book pages",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log per-step details to stderr"},
			&cli.BoolFlag{Name: "constrain-width", Usage: "limit reconstructed paragraphs to the width of their text runs"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write output to `FILE` instead of STDOUT"},
		},
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Reconstructs a single exported page file",
				ArgsUsage: "PAGE.html",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "book", Usage: "book `NAME` used to fix image links (default: the directory holding the page)"},
				},
				Action: runFile,
			},
			{
				Name:   "page",
				Usage:  "Reconstructs a page of a book directory",
				Flags:  pageFlags(),
				Action: runPage,
			},
			{
				Name:   "export",
				Usage:  "Writes the paragraphs of a reconstructed page to a DOCX file",
				Flags:  pageFlags(),
				Action: runExport,
			},
		},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "books", Value: ".", Usage: "books `DIR`ectory"},
		&cli.StringFlag{Name: "catalog", Usage: "catalog `FILE` (YAML); built-in catalog when absent"},
		&cli.StringFlag{Name: "book", Required: true, Usage: "book `TITLE`"},
		&cli.IntFlag{Name: "page", Usage: "page `NUMBER`, 0 is the first page"},
	}
}
