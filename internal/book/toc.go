package book

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// titlesByHref parses the NCX and returns section titles keyed by the nav
// point's src and its fragment-stripped form, the two shapes sectionTitle
// looks up. Books without an NCX get an empty map and fall back to numbered
// section titles.
func titlesByHref(filename string, book *epub.Rootfile) map[string]string {
	result := make(map[string]string)

	ncxData, err := readNCX(filename, book)
	if err != nil {
		return result
	}

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		return result
	}

	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			title := strings.TrimSpace(np.Label.Text)
			for _, key := range []string{np.Content.Src, stripFragment(np.Content.Src)} {
				if key == "" {
					continue
				}
				if _, exists := result[key]; !exists {
					result[key] = title
				}
			}
			walk(np.Children)
		}
	}
	walk(toc.NavMap.NavPoints)

	return result
}

func stripFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}

// readNCX locates the NCX in the archive, preferring the manifest's
// declaration over an extension scan, and returns its contents.
func readNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	name := ncxName(book, zr)
	if name == "" {
		return nil, fmt.Errorf("no NCX file found in epub")
	}

	for _, f := range zr.File {
		// Manifest hrefs are relative to the rootfile; archive names are not.
		if f.Name == name || strings.HasSuffix(f.Name, "/"+name) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("NCX file %s not found in archive", name)
}

func ncxName(book *epub.Rootfile, zr *zip.ReadCloser) string {
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			return item.HREF
		}
	}
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
			return f.Name
		}
	}
	return ""
}
