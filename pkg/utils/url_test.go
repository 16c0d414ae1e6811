package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://www.olx.com.br/vi/123",
		NormalizeURL("HTTPS://WWW.OLX.com.br/vi/123"))
	assert.Equal(t, "https://example.com/imovel",
		NormalizeURL("https://example.com/imovel/"))
	assert.Equal(t, "https://example.com/imovel",
		NormalizeURL("https://example.com/imovel#fotos"))
	assert.Equal(t, "https://example.com/Imovel/Venda",
		NormalizeURL("  https://example.com/Imovel/Venda  "),
		"path case is preserved, only scheme and host fold")
}

func TestNormalizeURL_Invalid(t *testing.T) {
	// Unparseable or host-less input passes through trimmed so it still
	// hashes deterministically.
	assert.Equal(t, "not a url", NormalizeURL(" not a url "))
	assert.Equal(t, "/relative/path", NormalizeURL("/relative/path"))
}

func TestHashURL_Stable(t *testing.T) {
	a := HashURL("https://example.com/anuncio-1360288429")
	b := HashURL("https://example.com/anuncio-1360288429")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashURL("https://example.com/anuncio-1360288430"))
}

func TestHashURL_AfterNormalize(t *testing.T) {
	a := HashURL(NormalizeURL("https://Example.com/imovel/"))
	b := HashURL(NormalizeURL("https://example.com/imovel"))
	assert.Equal(t, a, b, "spelling variants of the same URL share one identity")
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://www.zapimoveis.com.br/venda/apartamentos/")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/imovel/apartamento-id-2544/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.zapimoveis.com.br/imovel/apartamento-id-2544/", abs)

	abs, err = ToAbsoluteURL(base, "https://other.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.com/x", abs)
}

func TestAdIDFromURL(t *testing.T) {
	assert.Equal(t, "1360288429",
		AdIDFromURL("https://pe.olx.com.br/vi/1360288429"))
	assert.Equal(t, "1360288429",
		AdIDFromURL("https://olx.com.br/imoveis/apartamento-2-quartos-1360288429"))
	assert.Empty(t, AdIDFromURL("https://example.com/busca/apartamentos"))
	assert.Empty(t, AdIDFromURL("https://example.com/lote-42"),
		"short numeric tails are not ad ids")
}

func TestDomainLabel(t *testing.T) {
	assert.Equal(t, "OLX", DomainLabel("olx.com.br"))
	assert.Equal(t, "ZAPIMOVEIS", DomainLabel("www.zapimoveis.com.br"))
	assert.Equal(t, "VIVAREAL", DomainLabel("VivaReal.com.br"))
	assert.Equal(t, "LOCALHOST", DomainLabel("localhost"))
}
