package mpost

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RenderHTML renders a Mastodon status's HTML content to plain text,
// applying the same decorations the original Rust implementation's
// html2text-based renderer used (SPEC_FULL.md §4.2): heading prefixes,
// bullet/ordered-list prefixes, block quotes, bold/italic/code markers,
// link text with the href discarded, and "[title]" for images.
func RenderHTML(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + src + "</body></html>"))
	if err != nil {
		return src
	}

	body := doc.Find("body")
	if body.Length() == 0 || body.Get(0) == nil {
		return ""
	}

	var sb strings.Builder
	renderChildren(body.Get(0), &sb)

	return strings.TrimRight(sb.String(), "\n")
}

func renderNode(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		// fall through to tag handling below
	default:
		renderChildren(n, sb)
		return
	}

	switch strings.ToLower(n.Data) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		sb.WriteString(strings.Repeat("#", level) + " ")
		renderChildren(n, sb)
		sb.WriteString("\n\n")
	case "p", "div":
		renderChildren(n, sb)
		sb.WriteString("\n\n")
	case "br":
		sb.WriteString("\n")
	case "ul":
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || strings.ToLower(li.Data) != "li" {
				continue
			}
			sb.WriteString("* ")
			renderChildren(li, sb)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	case "ol":
		i := 1
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || strings.ToLower(li.Data) != "li" {
				continue
			}
			sb.WriteString(fmt.Sprintf("%d. ", i))
			renderChildren(li, sb)
			sb.WriteString("\n")
			i++
		}
		sb.WriteString("\n")
	case "blockquote":
		var inner strings.Builder
		renderChildren(n, &inner)
		lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
		for _, line := range lines {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	case "strong", "b":
		sb.WriteString("**")
		renderChildren(n, sb)
		sb.WriteString("**")
	case "em", "i":
		sb.WriteString("*")
		renderChildren(n, sb)
		sb.WriteString("*")
	case "code", "pre":
		sb.WriteString("`")
		renderChildren(n, sb)
		sb.WriteString("`")
	case "s", "strike", "del":
		renderChildren(n, sb)
	case "a":
		// href is discarded; visible text survives.
		renderChildren(n, sb)
	case "img":
		title := attr(n, "title")
		if title == "" {
			title = attr(n, "alt")
		}
		sb.WriteString("[" + title + "]")
	default:
		renderChildren(n, sb)
	}
}

func renderChildren(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, sb)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
