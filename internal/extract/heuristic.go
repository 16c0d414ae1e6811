package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/listing-harvester/internal/entity"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 300
)

var (
	priceRe = regexp.MustCompile(`R\$\s*[\d.,]+`)
	areaRe  = regexp.MustCompile(`(?i)(\d{2,4})\s*m[²2]`)
	roomsRe = regexp.MustCompile(`(?i)(\d+)\s*(?:quartos?|dormitórios?|qts?|q)\b`)
	bathsRe = regexp.MustCompile(`(?i)(\d+)\s*(?:banheiros?|lavabos?|b\.)`)
	cepRe   = regexp.MustCompile(`\b\d{5}-\d{3}\b`)
	phoneRe = regexp.MustCompile(`\(?\d{2,3}\)?\s*\d{4,5}-\d{4}`)
	// "Rua X, 120, Curitiba - PR" style address lines.
	addressRe = regexp.MustCompile(`([A-Za-zÀ-ÿ0-9\s.,\-]+\b),\s*([A-Za-zÀ-ÿ\s]+)\s*-\s*([A-Z]{2})\b`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// HeuristicStrategy is the regex fallback over rendered markup: first match
// wins per field. It runs after the structured stage and only fields the
// structured stage left empty survive the merge.
type HeuristicStrategy struct{}

func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

func (s *HeuristicStrategy) Name() string { return "heuristic" }

func (s *HeuristicStrategy) TryExtract(p Payload) *entity.PartialListing {
	raw := p.HTML
	if raw == "" {
		raw = string(p.JSON)
	}
	if raw == "" {
		return nil
	}

	out := &entity.PartialListing{}
	text := spaceRe.ReplaceAllString(raw, " ")

	if m := priceRe.FindString(text); m != "" {
		out.Price = m
	}
	if m := areaRe.FindStringSubmatch(text); m != nil {
		out.Area = m[1] + " m²"
	}
	if m := roomsRe.FindStringSubmatch(text); m != nil {
		out.Rooms = m[1]
	}
	if m := bathsRe.FindStringSubmatch(text); m != nil {
		out.Bathrooms = m[1]
	}
	if m := cepRe.FindString(text); m != "" {
		out.PostalCode = m
	}
	if m := phoneRe.FindString(text); m != "" {
		out.Contact = m
	}

	if p.HTML != "" {
		s.fromDocument(p.HTML, out)
	}

	if out.Empty() {
		return nil
	}
	return out
}

// fromDocument fills the DOM-derived fields: title, description, contact
// carried in tel: links or data attributes, and the address line.
func (s *HeuristicStrategy) fromDocument(html string, out *entity.PartialListing) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	doc.Find("script, style").Remove()
	bodyText := doc.Find("body").Text()
	visible := cleanText(bodyText)

	out.Title = pageTitle(doc, bodyText)
	fill(&out.Description, metaDescription(doc, visible))

	if out.Contact == "" {
		doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			out.Contact = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
			return false
		})
	}
	if out.Contact == "" {
		if v, ok := doc.Find("[data-phone]").First().Attr("data-phone"); ok {
			out.Contact = strings.TrimSpace(v)
		}
	}

	if out.Address == "" {
		if m := addressRe.FindStringSubmatch(visible); m != nil {
			out.Address = strings.TrimSpace(m[1])
			fill(&out.City, strings.TrimSpace(m[2]))
			fill(&out.Region, strings.TrimSpace(m[3]))
		}
	}
}

// pageTitle prefers the <title> tag, then the first heading, then the first
// non-empty line of visible text, truncated to a fixed length.
func pageTitle(doc *goquery.Document, bodyText string) string {
	if t := cleanText(doc.Find("title").First().Text()); t != "" {
		return truncate(t, maxTitleLen)
	}
	heading := ""
	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		heading = cleanText(sel.Text())
		return heading == ""
	})
	if heading != "" {
		return truncate(heading, maxTitleLen)
	}
	for _, line := range strings.Split(bodyText, "\n") {
		if line = cleanText(line); line != "" {
			return truncate(line, maxTitleLen)
		}
	}
	return ""
}

// metaDescription prefers meta description, then og:description, then a
// fixed-length prefix of visible text.
func metaDescription(doc *goquery.Document, visible string) string {
	if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(d) != "" {
		return strings.TrimSpace(d)
	}
	if d, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && strings.TrimSpace(d) != "" {
		return strings.TrimSpace(d)
	}
	return truncate(visible, maxDescriptionLen)
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
