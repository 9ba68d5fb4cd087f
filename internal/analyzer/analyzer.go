package analyzer

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
)

// Document is the queryable view of one fetched page: the candidate links,
// images and forms plus the metadata the SEO/mobile rules need.
type Document struct {
	Links           []model.Link
	Images          []model.Image
	Forms           []model.Form
	Title           string
	MetaDescription string
	Viewport        string
}

// Analyzer parses fetched HTML into a Document. Parsing is best-effort:
// malformed markup degrades to whatever could be extracted, never an error
// that would abort the scan.
type Analyzer struct {
	logger logging.Logger
}

func New(logger logging.Logger) (*Analyzer, error) {
	if logger == nil {
		return nil, errNilLogger
	}
	return &Analyzer{
		logger: logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}, nil
}

// Parse extracts links, images, forms and page metadata from body.
// pageURL is the fetched page's own URL, used as the base for resolving
// relative image sources.
func (a *Analyzer) Parse(pageURL string, body []byte) *Document {
	d := &Document{
		Links:  []model.Link{},
		Images: []model.Image{},
		Forms:  []model.Form{},
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		a.logger.Warn("html parse failed, returning partial document",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return d
	}

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href := getAttr(sel, "href")
		if !isLinkCandidate(href) {
			return
		}
		text := truncate(strings.TrimSpace(sel.Text()), 50)
		if text == "" {
			text = "[No text]"
		}
		d.Links = append(d.Links, model.Link{Href: href, Text: text})
	})

	doc.Find("img").Each(func(i int, sel *goquery.Selection) {
		src := getAttr(sel, "src")
		if src == "" {
			return
		}
		alt := getAttr(sel, "alt")
		if alt == "" {
			alt = "[No alt text]"
		}
		d.Images = append(d.Images, model.Image{
			Src: resolveURL(pageURL, src),
			Alt: alt,
		})
	})

	d.Forms = extractForms(doc, pageURL)

	d.Title = strings.TrimSpace(doc.Find("title").First().Text())
	d.MetaDescription = getAttr(doc.Find(`meta[name="description"]`).First(), "content")
	d.Viewport = getAttr(doc.Find(`meta[name="viewport"]`).First(), "content")

	a.logger.Debug("page parsed",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "links", Value: len(d.Links)},
		logging.Field{Key: "images", Value: len(d.Images)},
		logging.Field{Key: "forms", Value: len(d.Forms)})

	return d
}

// isLinkCandidate keeps only absolute http/https anchors and drops
// javascript:, mailto: and tel: pseudo-links.
func isLinkCandidate(href string) bool {
	if !strings.HasPrefix(href, "http") {
		return false
	}
	return !strings.Contains(href, "javascript:") &&
		!strings.Contains(href, "mailto:") &&
		!strings.Contains(href, "tel:")
}

// resolveURL turns a possibly-relative src into an absolute URL.
// Root-relative paths resolve against the page's scheme+host; other
// relative forms use standard relative resolution.
func resolveURL(pageURL, src string) string {
	if strings.HasPrefix(src, "http") {
		return src
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	if strings.HasPrefix(src, "/") {
		return base.Scheme + "://" + base.Host + src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

// getAttr safely retrieves a trimmed attribute value from a selection.
func getAttr(sel *goquery.Selection, attrName string) string {
	val, exists := sel.Attr(attrName)
	if exists {
		return strings.TrimSpace(val)
	}
	return ""
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
