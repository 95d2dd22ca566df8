package gochart

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/roach88/plotcheck/internal/scene"
)

// defaultFontSize is assumed for text nodes without a font-size style.
const defaultFontSize = 10.0

// glyphWidth approximates the advance of one character as a fraction of
// the font size.
const glyphWidth = 0.6

// textNode is one <text> element of a rendered SVG.
type textNode struct {
	Text string
	X, Y float64
	Size float64
}

// bounds estimates the box covered by the text. Y is the baseline.
func (t textNode) bounds() scene.Rect {
	return scene.Rect{
		X:      t.X,
		Y:      t.Y - t.Size,
		Width:  float64(len([]rune(t.Text))) * t.Size * glyphWidth,
		Height: t.Size * 1.2,
	}
}

// layout is what the adapter reads back from a rendered SVG.
type layout struct {
	Canvas scene.Rect
	Texts  []textNode
}

// inspectSVG parses a rendered SVG document.
func inspectSVG(r io.Reader) (*layout, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered SVG: %w", err)
	}

	svg := findElement(doc, "svg")
	if svg == nil {
		return nil, fmt.Errorf("rendered output has no <svg> root")
	}

	l := &layout{
		Canvas: scene.Rect{
			Width:  attrFloat(svg, "width"),
			Height: attrFloat(svg, "height"),
		},
	}
	walk(svg, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "text" {
			return
		}
		l.Texts = append(l.Texts, textNode{
			Text: strings.TrimSpace(textContent(n)),
			X:    attrFloat(n, "x"),
			Y:    attrFloat(n, "y"),
			Size: fontSize(attr(n, "style")),
		})
	})
	return l, nil
}

// locate returns the union of the boxes of the last text node matching each
// label. Legends render after the plot body, so the last match is the
// legend's. Labels with no text node are skipped; the result is empty when
// none is found.
func (l *layout) locate(labels []string) scene.Rect {
	var out scene.Rect
	for _, label := range labels {
		for i := len(l.Texts) - 1; i >= 0; i-- {
			if l.Texts[i].Text == label {
				out = out.Union(l.Texts[i].bounds())
				break
			}
		}
	}
	return out
}

func findElement(n *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && c.Type == html.ElementNode && c.Data == tag {
			found = c
		}
	})
	return found
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrFloat(n *html.Node, key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(attr(n, key), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// fontSize reads font-size from an inline style declaration.
func fontSize(style string) float64 {
	for _, decl := range strings.Split(style, ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(key) != "font-size" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "px"), 64)
		if err == nil && f > 0 {
			return f
		}
	}
	return defaultFontSize
}
