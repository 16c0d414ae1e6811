package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string, used as the stable link
// identity so the same URL always maps to the same row.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeURL canonicalizes a URL before hashing: lower-cased scheme and
// host, fragment dropped, trailing slash trimmed. Invalid URLs pass through
// unchanged so an odd link still gets a deterministic identity.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

var trailingIDRe = regexp.MustCompile(`-(\d{6,})$`)

// AdIDFromURL extracts a natural numeric ad id from a listing URL path, e.g.
// ".../vi/1360288429" or ".../apartamento-2-quartos-1360288429". Returns ""
// when the path carries no usable id.
func AdIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if isDigits(last) {
		return last
	}
	if m := trailingIDRe.FindStringSubmatch(last); m != nil {
		return m[1]
	}
	return ""
}

// DomainLabel turns a source domain into its short upper-cased label,
// e.g. "olx.com.br" -> "OLX".
func DomainLabel(domain string) string {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	if i := strings.IndexByte(domain, '.'); i > 0 {
		domain = domain[:i]
	}
	return strings.ToUpper(domain)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
