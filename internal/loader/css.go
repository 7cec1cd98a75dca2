package loader

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// RewriteCSS adapts an exported stylesheet to the viewer: `span` type
// selectors are dropped so span rules apply to the reconstructed paragraphs,
// and ../image references are redirected to the book's image folder.
func RewriteCSS(book string, src []byte) string {
	imageDir := "../" + book + "/" + book + "-web-resources/image"

	lexer := css.NewLexer(parse.NewInputBytes(src))
	var sb strings.Builder
	sb.Grow(len(src))
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return sb.String()
		case css.IdentToken:
			if string(data) == "span" {
				continue
			}
		case css.URLToken, css.StringToken:
			if strings.Contains(string(data), "../image") {
				sb.WriteString(strings.ReplaceAll(string(data), "../image", imageDir))
				continue
			}
		}
		sb.Write(data)
	}
}
