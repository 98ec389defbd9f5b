// Package content extracts text, images, and file trees from submissions
// and question markup for prompt construction.
package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseMarkup pulls the visible paragraph text and every image source URL
// out of an HTML fragment. Parsing is permissive; malformed markup yields
// whatever could be understood. Image links are not deduplicated.
func ParseMarkup(markup string) (string, []string) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", nil
	}

	var paragraphs []string
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.P:
				paragraphs = append(paragraphs, strippedText(n))
			case atom.Img:
				for _, attr := range n.Attr {
					if attr.Key == "src" {
						links = append(links, attr.Val)
						break
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(paragraphs, " "), links
}

// strippedText concatenates the trimmed text nodes under n.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
