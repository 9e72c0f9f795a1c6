package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags get a newline inserted before and after their text content so
// paragraph/row/heading structure survives tag stripping.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
}

// skipTags are dropped entirely, content included.
var skipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true,
}

var collapseWS = regexp.MustCompile(`[ \t\r\f\v]+`)
var collapseNL = regexp.MustCompile(`\n{3,}`)

// StripMarkup implements §4.2 step 4: drop script/style/head subtrees
// entirely, insert a newline around block-level elements, collapse
// whitespace, and decode entity references (the tokenizer already does
// entity decoding as it emits text nodes).
func StripMarkup(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var skipDepth int

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if skipTags[tok.DataAtom] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockTags[tok.DataAtom] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			if skipTags[tok.DataAtom] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockTags[tok.DataAtom] {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			sb.WriteString(tok.Data)
		}
	}

	text := sb.String()
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(collapseWS.ReplaceAllString(l, " "))
		if l != "" {
			kept = append(kept, l)
		}
	}
	text = strings.Join(kept, "\n")
	return collapseNL.ReplaceAllString(text, "\n\n")
}
