package book

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/dlemaire/skim/internal/rsvp"
)

// Cursor tracks the section currently being read and presents it to the
// engine as one stable surface: the engine keeps a single Surface reference
// while the host moves the cursor between sections and re-extracts via
// LoadNextPageContent.
type Cursor struct {
	mu      sync.RWMutex
	book    *Book
	index   int
	section *Section
}

// NewCursor opens the given section of a book and positions the cursor on it.
func NewCursor(b *Book, index int) (*Cursor, error) {
	section, err := b.Section(index)
	if err != nil {
		return nil, err
	}
	return &Cursor{book: b, index: index, section: section}, nil
}

// Section returns the section under the cursor.
func (c *Cursor) Section() *Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.section
}

// Info returns the metadata of the section under the cursor.
func (c *Cursor) Info() SectionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.Sections()[c.index]
}

// Advance moves to the next spine section. It returns false at the end of
// the book.
func (c *Cursor) Advance() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index+1 >= len(c.book.Sections()) {
		return false, nil
	}
	section, err := c.book.Section(c.index + 1)
	if err != nil {
		return false, err
	}
	c.index++
	c.section = section
	return true, nil
}

// JumpTo moves the cursor to an arbitrary section.
func (c *Cursor) JumpTo(index int) error {
	section, err := c.book.Section(index)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = index
	c.section = section
	return nil
}

// Surface delegation to the current section.

func (c *Cursor) Documents() []*html.Node {
	return c.Section().Documents()
}

func (c *Cursor) Anchor(docIndex int, node *html.Node, start, end int) (rsvp.Anchor, error) {
	return c.Section().Anchor(docIndex, node, start, end)
}

func (c *Cursor) ScrollOffset() float64 {
	return c.Section().ScrollOffset()
}

func (c *Cursor) PageExtent() float64 {
	return c.Section().PageExtent()
}

var _ rsvp.Surface = (*Cursor)(nil)
