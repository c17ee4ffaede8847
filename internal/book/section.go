package book

import (
	"errors"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dlemaire/skim/internal/rsvp"
)

// Linear layout model: the section's text is laid out as fixed-width lines
// along a single vertical axis. Coarse, but enough for the visibility band
// and scroll-into-view queries a text host needs.
const (
	runesPerLine = 60
	lineHeight   = 20.0
)

var errDetachedNode = errors.New("node is not part of this section")

// Section is one structural unit of a book, presented to the engine as a
// read-only rendering surface. The host owns the viewport and feeds scroll
// geometry in through SetViewport.
type Section struct {
	id   string
	docs []*html.Node

	// rune offset of each text node within the section's flat text
	offsets map[*html.Node]int

	mu     sync.RWMutex
	scroll float64
	extent float64
}

func newSection(id string, docs []*html.Node) *Section {
	s := &Section{
		id:      id,
		docs:    docs,
		offsets: make(map[*html.Node]int),
		extent:  lineHeight * 24,
	}
	offset := 0
	for _, doc := range docs {
		offset = s.indexTextNodes(doc, offset)
	}
	return s
}

func (s *Section) indexTextNodes(n *html.Node, offset int) int {
	if n.Type == html.TextNode {
		s.offsets[n] = offset
		return offset + utf8.RuneCountInString(n.Data) + 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		offset = s.indexTextNodes(c, offset)
	}
	return offset
}

// ID returns the section's stable identifier.
func (s *Section) ID() string {
	return s.id
}

// SetViewport updates the host-owned scroll offset and viewport extent.
func (s *Section) SetViewport(scroll, extent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = scroll
	if extent > 0 {
		s.extent = extent
	}
}

// Documents returns the section's sub-documents in reading order.
func (s *Section) Documents() []*html.Node {
	return s.docs
}

// Anchor builds a geometry handle for a rune range of a text node.
func (s *Section) Anchor(docIndex int, node *html.Node, start, end int) (rsvp.Anchor, error) {
	if docIndex < 0 || docIndex >= len(s.docs) {
		return nil, errDetachedNode
	}
	if _, ok := s.offsets[node]; !ok {
		return nil, errDetachedNode
	}
	return &anchor{section: s, node: node, start: start, end: end}, nil
}

// ScrollOffset returns the current scroll position.
func (s *Section) ScrollOffset() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scroll
}

// PageExtent returns the viewport size along the reading axis.
func (s *Section) PageExtent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extent
}

// anchor locates a rune range through the section's layout model. It holds
// no geometry of its own; Box derives it on demand so a re-layout is always
// reflected.
type anchor struct {
	section    *Section
	node       *html.Node
	start, end int
}

func (a *anchor) Box() (rsvp.Rect, error) {
	base, ok := a.section.offsets[a.node]
	if !ok {
		return rsvp.Rect{}, errDetachedNode
	}
	begin := base + a.start
	return rsvp.Rect{
		X:      float64(begin%runesPerLine) * (lineHeight / 2),
		Y:      float64(begin/runesPerLine) * lineHeight,
		Width:  float64(a.end-a.start) * (lineHeight / 2),
		Height: lineHeight,
	}, nil
}
