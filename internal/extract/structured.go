package extract

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/pkg/utils"
)

const maxWalkDepth = 10

// StructuredStrategy reads machine-readable embedded data: JSON-LD blocks in
// HTML, listing objects in raw JSON payloads (OLX-style "list_id"/"ad_url"
// captures), and known JSON keys left anywhere in the markup.
type StructuredStrategy struct{}

func NewStructuredStrategy() *StructuredStrategy {
	return &StructuredStrategy{}
}

func (s *StructuredStrategy) Name() string { return "structured" }

func (s *StructuredStrategy) TryExtract(p Payload) *entity.PartialListing {
	out := &entity.PartialListing{}

	if len(p.JSON) > 0 {
		if v := decodeJSON(p.JSON); v != nil {
			collectListing(v, out, 0)
		}
	}

	if p.HTML != "" {
		s.fromJSONLD(p.HTML, out)
		s.fromEmbeddedKeys(p.HTML, out)
	}

	if out.Empty() {
		return nil
	}
	return out
}

// fromJSONLD scans <script type="application/ld+json"> blocks. Only objects
// that look like a listing (carrying a name, a price or an address) may
// contribute fields; breadcrumbs and site-wide metadata are skipped.
func (s *StructuredStrategy) fromJSONLD(html string, out *entity.PartialListing) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		v := decodeJSON([]byte(sel.Text()))
		if v == nil {
			return
		}
		for _, obj := range flattenObjects(v, 0) {
			candidate := &entity.PartialListing{}
			collectListing(obj, candidate, 0)
			if candidate.Title != "" || candidate.Price != "" || candidate.Address != "" || candidate.City != "" {
				mergeInto(out, candidate)
			}
		}
	})
}

var (
	embeddedCityRe   = regexp.MustCompile(`"addressLocality"\s*:\s*"([^"]{2,100})"`)
	embeddedRegionRe = regexp.MustCompile(`"addressRegion"\s*:\s*"([A-Z]{2})"`)
	embeddedPostalRe = regexp.MustCompile(`"postalCode"\s*:\s*"(\d{5}-\d{3})"`)
	embeddedListIDRe = regexp.MustCompile(`"list_id"\s*:\s*(\d+)`)
	embeddedAdURLRe  = regexp.MustCompile(`"ad_url"\s*:\s*"(https?://[^"]+)"`)
)

// fromEmbeddedKeys picks up known JSON keys stranded anywhere in the markup,
// outside well-formed JSON-LD blocks. Some sites ship address data only
// inside inline application state.
func (s *StructuredStrategy) fromEmbeddedKeys(html string, out *entity.PartialListing) {
	if out.City == "" {
		if m := embeddedCityRe.FindStringSubmatch(html); m != nil {
			out.City = m[1]
		}
	}
	if out.Region == "" {
		if m := embeddedRegionRe.FindStringSubmatch(html); m != nil {
			out.Region = m[1]
		}
	}
	if out.PostalCode == "" {
		if m := embeddedPostalRe.FindStringSubmatch(html); m != nil {
			out.PostalCode = m[1]
		}
	}
	if out.NaturalID == "" {
		if m := embeddedListIDRe.FindStringSubmatch(html); m != nil {
			out.NaturalID = m[1]
		}
	}
	if out.NaturalID == "" {
		if m := embeddedAdURLRe.FindStringSubmatch(html); m != nil {
			out.NaturalID = utils.AdIDFromURL(m[1])
		}
	}
}

func decodeJSON(raw []byte) interface{} {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// flattenObjects expands arrays and @graph containers into the individual
// candidate objects they hold.
func flattenObjects(v interface{}, depth int) []map[string]interface{} {
	if depth > maxWalkDepth {
		return nil
	}
	switch t := v.(type) {
	case map[string]interface{}:
		objs := []map[string]interface{}{t}
		if graph, ok := t["@graph"]; ok {
			objs = append(objs, flattenObjects(graph, depth+1)...)
		}
		return objs
	case []interface{}:
		var objs []map[string]interface{}
		for _, item := range t {
			objs = append(objs, flattenObjects(item, depth+1)...)
		}
		return objs
	}
	return nil
}

// collectListing walks a decoded JSON value and fills listing fields from
// known keys, first occurrence wins. It understands both schema.org names
// (offers.price, address.addressLocality, telephone) and the capture-payload
// names some sources use (subject, municipality, state_uf, list_id).
func collectListing(v interface{}, out *entity.PartialListing, depth int) {
	if depth > maxWalkDepth {
		return
	}
	switch t := v.(type) {
	case map[string]interface{}:
		fill(&out.Title, stringValue(firstKey(t, "name", "headline", "subject")))
		fill(&out.Price, priceValue(t["price"]))
		fill(&out.Description, stringValue(t["description"]))
		fill(&out.Address, stringValue(t["streetAddress"]))
		fill(&out.City, stringValue(firstKey(t, "addressLocality", "municipality")))
		fill(&out.Region, stringValue(firstKey(t, "addressRegion", "state_uf")))
		fill(&out.PostalCode, stringValue(t["postalCode"]))
		fill(&out.Contact, stringValue(firstKey(t, "telephone", "phone")))
		fill(&out.NaturalID, idValue(t["list_id"]))
		if out.NaturalID == "" {
			fill(&out.NaturalID, utils.AdIDFromURL(stringValue(t["ad_url"])))
		}
		for _, child := range t {
			collectListing(child, out, depth+1)
		}
	case []interface{}:
		for _, item := range t {
			collectListing(item, out, depth+1)
		}
	}
}

func firstKey(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// priceValue keeps string prices verbatim and currency-prefixes bare
// numeric values, matching how the stores expect price text.
func priceValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return "R$ " + t.String()
	}
	return ""
}

func idValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		if t != "" && isDigitsOnly(t) {
			return t
		}
	case json.Number:
		return t.String()
	}
	return ""
}

func isDigitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
