package dom

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// Declaration is one `property: value` pair of an inline style.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered inline style declaration list.
type Style []Declaration

// ParseStyle parses the contents of a style attribute.
func ParseStyle(s string) Style {
	var style Style
	if strings.TrimSpace(s) == "" {
		return style
	}
	parser := css.NewParser(parse.NewInputString(s), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return style
		case css.DeclarationGrammar:
			value := joinValue(parser.Values())
			if value == "" {
				continue
			}
			style = style.With(strings.ToLower(string(data)), value)
		}
	}
}

func joinValue(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// Get returns the value of property, or "" when it is not declared.
func (s Style) Get(property string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Property == property {
			return s[i].Value
		}
	}
	return ""
}

// With returns the style with property set to value. An existing declaration
// keeps its position; an empty value removes the declaration.
func (s Style) With(property, value string) Style {
	for i := range s {
		if s[i].Property != property {
			continue
		}
		if value == "" {
			return append(s[:i], s[i+1:]...)
		}
		s[i].Value = value
		return s
	}
	if value == "" {
		return s
	}
	return append(s, Declaration{Property: property, Value: value})
}

func (s Style) String() string {
	var sb strings.Builder
	for i, d := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteByte(';')
	}
	return sb.String()
}

// StyleOf parses the inline style of n.
func StyleOf(n *html.Node) Style {
	return ParseStyle(Attr(n, "style"))
}

// StyleValue returns a single inline style property of n.
func StyleValue(n *html.Node, property string) string {
	return StyleOf(n).Get(property)
}

// SetStyle sets inline style properties on n, given as property/value pairs.
func SetStyle(n *html.Node, pairs ...string) {
	style := StyleOf(n)
	for i := 0; i+1 < len(pairs); i += 2 {
		style = style.With(pairs[i], pairs[i+1])
	}
	SetAttr(n, "style", style.String())
}

// Px reads the leading integer of a CSS length such as "12px" or "12.7px".
// It reports false when no integer can be read.
func Px(value string) (int, bool) {
	v := strings.TrimSpace(strings.Replace(value, "px", "", 1))
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Measured size attributes, in px, for elements laid out without an inline
// width or height.
const (
	WidthAttr  = "data-width"
	HeightAttr = "data-height"
)

// Extent returns the size of n: its inline width and height, falling back to
// WidthAttr and HeightAttr. Sizes that cannot be read are 0.
func Extent(n *html.Node) (width, height int) {
	style := StyleOf(n)
	width, ok := Px(style.Get("width"))
	if !ok {
		width, _ = Px(Attr(n, WidthAttr))
	}
	height, ok = Px(style.Get("height"))
	if !ok {
		height, _ = Px(Attr(n, HeightAttr))
	}
	return width, height
}
