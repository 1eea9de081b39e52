// Package render turns a post's content blocks into sanitized HTML.
//
// Rendering is total: every block yields markup, with unknown or
// malformed blocks producing a visible placeholder instead of being
// dropped. The assembled document then passes through a bluemonday
// allow-list policy so nothing an authoring tool smuggles into a text
// field can reach the page as live markup.
package render

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// Renderer converts block sequences to safe HTML. Safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
}

// New builds a Renderer with the allow-list policy matching the markup
// this package emits. Scripts, iframes, styles, and on* event attributes
// never survive; image sources must be https.
func New() *Renderer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "hr",
		"figure", "figcaption",
		"table", "thead", "tbody", "tr", "th", "td",
		"details", "summary",
		"div", "span",
	)
	p.AllowAttrs("class").OnElements("div", "span", "code", "pre", "hr", "table")

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &Renderer{policy: p}
}

// Blocks renders the sequence into one sanitized HTML fragment.
func (r *Renderer) Blocks(blocks []domain.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(renderBlock(blk))
		b.WriteByte('\n')
	}
	return r.policy.Sanitize(b.String())
}

// fallback is the visible placeholder for blocks that cannot be rendered.
func fallback(t domain.BlockType) string {
	return fmt.Sprintf(`<div class="unknown-block">Unsupported block type: %s</div>`, html.EscapeString(string(t)))
}

func renderBlock(blk domain.Block) string {
	if blk.Kind() == domain.BlockUnknown {
		return fallback(blk.Type)
	}
	data, err := blk.DecodeData()
	if err != nil {
		return fallback(blk.Type)
	}

	switch d := data.(type) {
	case *domain.HeadingData:
		level := d.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(d.Text), level)

	case *domain.ParagraphData:
		return "<p>" + html.EscapeString(d.Text) + "</p>"

	case *domain.ListData:
		tag := "ul"
		if d.Type == "ordered" || d.Type == "numbered" {
			tag = "ol"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "<%s>", tag)
		for _, item := range d.Items {
			b.WriteString("<li>")
			if item.Title != "" {
				b.WriteString("<strong>" + html.EscapeString(item.Title) + "</strong>")
			}
			for _, para := range item.Paragraphs {
				b.WriteString("<p>" + html.EscapeString(para.Text) + "</p>")
			}
			b.WriteString("</li>")
		}
		fmt.Fprintf(&b, "</%s>", tag)
		return b.String()

	case *domain.CodeData:
		class := ""
		if d.Language != "" {
			class = fmt.Sprintf(` class="language-%s"`, html.EscapeString(d.Language))
		}
		return fmt.Sprintf("<pre><code%s>%s</code></pre>", class, html.EscapeString(d.Code))

	case *domain.ImageData:
		return renderImage(*d)

	case *domain.GalleryData:
		var b strings.Builder
		b.WriteString(`<div class="gallery">`)
		for _, img := range d.Images {
			b.WriteString(renderImage(img))
		}
		b.WriteString("</div>")
		return b.String()

	case *domain.TableData:
		var b strings.Builder
		b.WriteString("<table><thead><tr>")
		for _, h := range d.Headers {
			b.WriteString("<th>" + html.EscapeString(h) + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		for _, row := range d.Rows {
			b.WriteString("<tr>")
			for _, cell := range row {
				b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
		return b.String()

	case *domain.FAQData:
		var b strings.Builder
		b.WriteString(`<div class="faq">`)
		for _, item := range d.Items {
			b.WriteString("<details><summary>" + html.EscapeString(item.Question) + "</summary>")
			b.WriteString("<p>" + html.EscapeString(item.Answer) + "</p></details>")
		}
		b.WriteString("</div>")
		return b.String()

	case *domain.ProductData:
		var b strings.Builder
		b.WriteString(`<div class="product-card">`)
		if d.Image != "" {
			b.WriteString(renderImage(domain.ImageData{URL: d.Image, Alt: d.Title}))
		}
		b.WriteString("<strong>" + html.EscapeString(d.Title) + "</strong>")
		if d.Description != "" {
			b.WriteString("<p>" + html.EscapeString(d.Description) + "</p>")
		}
		if d.URL != "" {
			label := d.ButtonText
			if label == "" {
				label = "View product"
			}
			fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(d.URL), html.EscapeString(label))
		}
		b.WriteString("</div>")
		return b.String()

	case *domain.CalloutData:
		kind := d.Type
		if kind == "" {
			kind = "info"
		}
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="callout callout-%s">`, html.EscapeString(kind))
		if d.Title != "" {
			b.WriteString("<strong>" + html.EscapeString(d.Title) + "</strong>")
		}
		b.WriteString("<p>" + html.EscapeString(d.Content) + "</p></div>")
		return b.String()

	case *domain.EmbedData:
		// Embeds render as an outbound link; live iframes never pass the policy.
		return fmt.Sprintf(`<p class="embed"><a href="%s">%s</a></p>`,
			html.EscapeString(d.URL), html.EscapeString(d.URL))

	case *domain.DividerData:
		if d.Style != "" {
			return fmt.Sprintf(`<hr class="%s">`, html.EscapeString(d.Style))
		}
		return "<hr>"
	}

	return fallback(blk.Type)
}

func renderImage(img domain.ImageData) string {
	var b strings.Builder
	b.WriteString("<figure>")
	fmt.Fprintf(&b, `<img src="%s" alt="%s">`, html.EscapeString(img.URL), html.EscapeString(img.Alt))
	if img.Caption != "" {
		b.WriteString("<figcaption>" + html.EscapeString(img.Caption) + "</figcaption>")
	}
	b.WriteString("</figure>")
	return b.String()
}
