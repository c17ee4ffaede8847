// Package book implements the rendering surface over EPUB files: it
// enumerates spine sections, parses their XHTML into document trees, and
// gives extracted text ranges a linear layout geometry so visibility queries
// work in a text host.
package book

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"

	"github.com/dlemaire/skim/internal/rsvp"
)

// SectionInfo identifies one structural unit of a book. ID doubles as the
// stable section identifier the engine persists positions against.
type SectionInfo struct {
	Index int
	ID    string
	Title string
}

// Book is an opened EPUB with its spine resolved to sections.
type Book struct {
	rc       *epub.ReadCloser
	root     *epub.Rootfile
	path     string
	sections []SectionInfo
}

// Open opens an EPUB file and resolves its spine. Section titles come from
// the NCX table of contents where one exists.
func Open(path string) (*Book, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	b := &Book{rc: rc, root: rc.Rootfiles[0], path: path}
	titles := titlesByHref(path, b.root)

	for i, ref := range b.root.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		href := ref.Item.HREF
		title := sectionTitle(titles, href, i)
		b.sections = append(b.sections, SectionInfo{Index: i, ID: href, Title: title})
	}
	if len(b.sections) == 0 {
		rc.Close()
		return nil, fmt.Errorf("epub has no readable sections")
	}
	return b, nil
}

// Close releases the underlying archive.
func (b *Book) Close() error {
	b.rc.Close()
	return nil
}

// Title returns the book title from the package metadata.
func (b *Book) Title() string {
	return strings.TrimSpace(b.root.Title)
}

// Sections lists the book's sections in spine order.
func (b *Book) Sections() []SectionInfo {
	return b.sections
}

// Section parses the section at the given index into a rendering surface.
func (b *Book) Section(index int) (*Section, error) {
	if index < 0 || index >= len(b.sections) {
		return nil, fmt.Errorf("section %d out of range", index)
	}
	info := b.sections[index]

	ref := b.root.Spine.Itemrefs[info.Index]
	r, err := ref.Item.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open section %q: %w", info.ID, err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read section %q: %w", info.ID, err)
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse section %q: %w", info.ID, err)
	}
	return newSection(info.ID, []*html.Node{doc}), nil
}

func sectionTitle(titles map[string]string, href string, index int) string {
	if t, ok := titles[href]; ok && t != "" {
		return t
	}
	if t, ok := titles[stripFragment(href)]; ok && t != "" {
		return t
	}
	return fmt.Sprintf("Section %d", index+1)
}

// TextSection wraps raw text (stdin, plain files) in a single-document
// surface so the engine reads it like any rendered section.
func TextSection(id, text string) *Section {
	node := &html.Node{Type: html.TextNode, Data: text}
	root := &html.Node{Type: html.ElementNode, Data: "body"}
	root.AppendChild(node)
	return newSection(id, []*html.Node{root})
}

// Ensure Section satisfies the engine's surface contract.
var _ rsvp.Surface = (*Section)(nil)
