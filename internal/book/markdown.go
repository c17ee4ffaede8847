package book

import (
	"regexp"
	"strings"
)

// Heading is a markdown heading with the index of the first word that follows
// it in the stripped text.
type Heading struct {
	Title     string
	Level     int
	WordIndex int
}

var (
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	imageMarkup = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkMarkup  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	emphasis    = regexp.MustCompile("[*_`]+")
)

// StripMarkdown reduces markdown source to readable prose. Heading markers,
// emphasis, images, link targets, and fenced code blocks are removed; the
// visible text stays.
func StripMarkdown(src string) string {
	var b strings.Builder
	inFence := false
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			line = m[2]
		}
		b.WriteString(cleanInline(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// MarkdownHeadings lists a document's headings with word offsets matching the
// output of StripMarkdown.
func MarkdownHeadings(src string) []Heading {
	var headings []Heading
	wordCount := 0
	inFence := false
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			headings = append(headings, Heading{
				Title:     strings.TrimSpace(cleanInline(m[2])),
				Level:     len(m[1]),
				WordIndex: wordCount,
			})
			line = m[2]
		}
		wordCount += len(strings.Fields(cleanInline(line)))
	}
	return headings
}

func cleanInline(line string) string {
	line = imageMarkup.ReplaceAllString(line, "")
	line = linkMarkup.ReplaceAllString(line, "$1")
	return emphasis.ReplaceAllString(line, "")
}

// IsMarkdownPath reports whether a path looks like a markdown file.
func IsMarkdownPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
