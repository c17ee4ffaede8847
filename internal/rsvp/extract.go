package rsvp

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// skippedElements are non-content elements whose subtrees never contribute
// words to the stream. head is listed because full XHTML documents are walked
// from the root and its metadata is never rendered.
var skippedElements = map[string]bool{
	"head":   true,
	"title":  true,
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
}

// ExtractWords walks every sub-document of the surface in order and returns
// the flat word stream. Whitespace-only tokens are discarded, so words are
// never empty. When an anchor cannot be constructed the word is kept without
// one rather than dropped.
func ExtractWords(surface Surface) []Word {
	var words []Word
	for docIndex, doc := range surface.Documents() {
		if doc == nil {
			continue
		}
		words = append(words, extractFromDocument(surface, doc, docIndex)...)
	}
	return words
}

func extractFromDocument(surface Surface, root *html.Node, docIndex int) []Word {
	var words []Word
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] || isHidden(n) {
				return
			}
		}
		if n.Type == html.TextNode {
			words = append(words, tokenizeTextNode(surface, n, docIndex)...)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return words
}

// isHidden reports whether an element's inline style removes it from view.
func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "style" {
			continue
		}
		style := strings.ToLower(strings.ReplaceAll(attr.Val, " ", ""))
		if strings.Contains(style, "display:none") ||
			strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

// tokenizeTextNode splits a text node on whitespace and emits one word per
// token, each anchored to its rune range within the node.
func tokenizeTextNode(surface Surface, n *html.Node, docIndex int) []Word {
	var words []Word
	runes := []rune(n.Data)
	start := -1
	for i := 0; i <= len(runes); i++ {
		atBoundary := i == len(runes) || unicode.IsSpace(runes[i])
		switch {
		case !atBoundary && start < 0:
			start = i
		case atBoundary && start >= 0:
			token := string(runes[start:i])
			anchor, err := surface.Anchor(docIndex, n, start, i)
			if err != nil {
				anchor = nil
			}
			words = append(words, NewWord(token, anchor, docIndex))
			start = -1
		}
	}
	return words
}
