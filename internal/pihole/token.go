package pihole

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TokenElementID is the id of the element holding the CSRF token on the
// admin login page.
const TokenElementID = "token"

// ErrElementNotFound is returned when no element carries the requested id.
var ErrElementNotFound = errors.New("element not found")

// ExtractElementText parses an HTML document and returns the trimmed text
// content of the first element whose id attribute matches id.
func ExtractElementText(r io.Reader, id string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	node := findByID(doc, id)
	if node == nil {
		return "", fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}

	var b strings.Builder
	collectText(node, &b)
	return strings.TrimSpace(b.String()), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
