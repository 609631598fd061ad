package credential

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"bilicred/internal/common"
)

// The refresh CSRF is served as the text content of this element on the
// correspond page.
const refreshCSRFNodeID = "1-name"

// extractRefreshCSRF pulls the refresh CSRF token out of the correspond
// page. Markup-dependent by nature; a missing node is an internal error,
// not a network one.
func extractRefreshCSRF(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", common.InternalError(err)
	}

	node := findByID(doc, refreshCSRFNodeID)
	if node == nil {
		return "", fmt.Errorf("%w: no element with id %q in correspond page",
			common.ErrInternal, refreshCSRFNodeID)
	}

	var sb strings.Builder
	collectText(node, &sb)
	return sb.String(), nil
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

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
