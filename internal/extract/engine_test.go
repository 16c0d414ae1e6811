package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonLDPage = `<html><head><title>Apto 2Q Centro | Imóveis</title>
<script type="application/ld+json">
{
  "@type": "Apartment",
  "name": "Apto 2Q",
  "offers": {"price": "250000"},
  "address": {"addressLocality": "Curitiba", "addressRegion": "PR", "postalCode": "80010-100"}
}
</script></head>
<body><h1>Apto 2Q</h1><p>Lindo apartamento, 75 m², 2 quartos, 1 banheiro. R$ 999,00 taxa.</p></body></html>`

func TestExtract_JSONLD(t *testing.T) {
	engine := NewEngine()
	listing := engine.Extract(Payload{HTML: jsonLDPage}, "https://www.imoveis.com.br/anuncio/apto-2q")
	require.NotNil(t, listing)

	assert.Equal(t, "Apto 2Q", listing.Title)
	assert.Equal(t, "250000", listing.Price, "structured price wins over the R$ regex match")
	assert.Equal(t, "Curitiba", listing.City)
	assert.Equal(t, "PR", listing.Region)
	assert.Equal(t, "80010-100", listing.PostalCode)
	assert.Equal(t, "75 m²", listing.Area, "heuristic fills fields the structured stage left empty")
	assert.Equal(t, "2", listing.Rooms)
	assert.Equal(t, "1", listing.Bathrooms)
	assert.Equal(t, "IMOVEIS", listing.SourceDomain)
	assert.Equal(t, "https://www.imoveis.com.br/anuncio/apto-2q", listing.SourceURL)
	assert.False(t, listing.CollectedAt.IsZero())
}

func TestExtract_HeuristicOnly(t *testing.T) {
	page := `<html><head><title>Casa para alugar</title></head>
<body><p>Ótima casa. R$ 1.200,00 por mês. Área de 75 m², 2 quartos e 1 banheiro.</p>
<p>Rua das Flores 120, Curitiba - PR</p>
<a href="tel:+5541988887777">Ligar</a></body></html>`

	engine := NewEngine()
	listing := engine.Extract(Payload{HTML: page}, "https://www.vivareal.com.br/imovel/casa-1234567")
	require.NotNil(t, listing)

	assert.Equal(t, "Casa para alugar", listing.Title)
	assert.Equal(t, "R$ 1.200,00", listing.Price)
	assert.Equal(t, "75 m²", listing.Area)
	assert.Equal(t, "2", listing.Rooms)
	assert.Equal(t, "1", listing.Bathrooms)
	assert.Equal(t, "+5541988887777", listing.Contact)
	assert.Equal(t, "Curitiba", listing.City)
	assert.Equal(t, "PR", listing.Region)
}

func TestExtract_JSONPayload(t *testing.T) {
	payload := []byte(`{
		"list_id": 1360288429,
		"subject": "Apto 2 quartos em Boa Viagem",
		"price": "R$ 250.000",
		"municipality": "Recife",
		"state_uf": "PE",
		"phone": "(81) 99999-0000"
	}`)

	engine := NewEngine()
	listing := engine.Extract(Payload{JSON: payload}, "https://www.olx.com.br/vi/1360288429")
	require.NotNil(t, listing)

	assert.Equal(t, "1360288429", listing.ID, "natural id from the capture payload")
	assert.Equal(t, "Apto 2 quartos em Boa Viagem", listing.Title)
	assert.Equal(t, "R$ 250.000", listing.Price)
	assert.Equal(t, "Recife", listing.City)
	assert.Equal(t, "PE", listing.Region)
	assert.Equal(t, "(81) 99999-0000", listing.Contact)
	assert.Equal(t, "OLX", listing.SourceDomain)
}

func TestExtract_NumericPriceGetsCurrencyPrefix(t *testing.T) {
	payload := []byte(`{"subject": "Terreno 300m", "price": 185000}`)

	engine := NewEngine()
	listing := engine.Extract(Payload{JSON: payload}, "https://www.olx.com.br/vi/1000000001")
	require.NotNil(t, listing)
	assert.Equal(t, "R$ 185000", listing.Price)
}

func TestExtract_NaturalIDFromURL(t *testing.T) {
	page := `<html><head><title>Apartamento à venda</title></head>
<body><p>R$ 300.000</p></body></html>`

	engine := NewEngine()
	listing := engine.Extract(Payload{HTML: page}, "https://pe.olx.com.br/vi/1360288429")
	require.NotNil(t, listing)
	assert.Equal(t, "1360288429", listing.ID)
}

func TestExtract_ContentHashIdentity(t *testing.T) {
	page := `<html><head><title>Casa no centro</title></head><body><p>R$ 500.000</p></body></html>`
	engine := NewEngine()

	// No numeric tail in the path, so the identity falls back to the
	// content hash and must be stable across repeated extractions.
	a := engine.Extract(Payload{HTML: page}, "https://www.imoveis.com.br/anuncio/casa-centro")
	b := engine.Extract(Payload{HTML: page}, "https://www.imoveis.com.br/anuncio/casa-centro")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, a.ID, 64)

	c := engine.Extract(Payload{HTML: page}, "https://www.imoveis.com.br/anuncio/casa-bairro")
	require.NotNil(t, c)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestExtract_RejectsEmptyPage(t *testing.T) {
	engine := NewEngine()
	assert.Nil(t, engine.Extract(Payload{HTML: "<html><body></body></html>"}, "https://example.com/x"))
	assert.Nil(t, engine.Extract(Payload{}, "https://example.com/x"))
}

func TestExtract_RawSnippetCapped(t *testing.T) {
	page := "<html><head><title>Lote à venda R$ 90.000</title></head><body>" +
		strings.Repeat("a", 2000) + "</body></html>"

	engine := NewEngine()
	listing := engine.Extract(Payload{HTML: page}, "https://example.com/lote-1234567")
	require.NotNil(t, listing)
	assert.Len(t, listing.RawSnippet, rawSnippetLen)
	assert.Equal(t, page[:rawSnippetLen], listing.RawSnippet)
}

func TestStructuredStrategy_EmbeddedKeys(t *testing.T) {
	page := `<html><body>
<script>window.__STATE__ = {"ad": {"list_id": 1360288429, "location": {"addressLocality": "Olinda", "addressRegion": "PE", "postalCode": "53010-000"}}};</script>
</body></html>`

	out := NewStructuredStrategy().TryExtract(Payload{HTML: page})
	require.NotNil(t, out)
	assert.Equal(t, "Olinda", out.City)
	assert.Equal(t, "PE", out.Region)
	assert.Equal(t, "53010-000", out.PostalCode)
	assert.Equal(t, "1360288429", out.NaturalID)
}

func TestStructuredStrategy_SkipsNonListingJSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type": "BreadcrumbList", "itemListElement": []}</script>
</head><body></body></html>`

	out := NewStructuredStrategy().TryExtract(Payload{HTML: page})
	assert.Nil(t, out)
}

func TestHeuristicStrategy_MetaDescription(t *testing.T) {
	page := `<html><head><title>Apto</title>
<meta name="description" content="Apartamento mobiliado próximo ao metrô.">
</head><body><p>R$ 2.000</p></body></html>`

	out := NewHeuristicStrategy().TryExtract(Payload{HTML: page})
	require.NotNil(t, out)
	assert.Equal(t, "Apartamento mobiliado próximo ao metrô.", out.Description)
}
