package rsvp

import "golang.org/x/net/html"

// Rect is a bounding box in surface coordinates. Y grows downward, matching
// the scroll axis.
type Rect struct {
	X, Y, Width, Height float64
}

// Anchor is an opaque handle into rendered text. The engine never inspects
// its internals; the only capability it needs is the current bounding box.
type Anchor interface {
	// Box returns the anchor's current bounding geometry. It may fail if the
	// underlying range has been detached by a re-layout.
	Box() (Rect, error)
}

// Surface is the engine's read-only view of the rendered section. Content and
// geometry are owned by the rendering side; the engine only queries them and
// tolerates changes underneath by re-extracting rather than trusting stale
// anchors.
type Surface interface {
	// Documents returns the parsed sub-documents of the current section, in
	// reading order. An empty slice means the content is not rendered yet.
	Documents() []*html.Node

	// Anchor constructs a handle for a rune range within a text node of the
	// given sub-document. Implementations may fail for detached nodes; the
	// extractor keeps the word without an anchor in that case.
	Anchor(docIndex int, node *html.Node, start, end int) (Anchor, error)

	// ScrollOffset is the current scroll position along the reading axis.
	ScrollOffset() float64

	// PageExtent is the size of the visible viewport along the reading axis.
	PageExtent() float64
}
