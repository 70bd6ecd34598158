// Package auth applies Earthdata credentials to outgoing product downloads.
package auth

import (
	"net/http"
	"strings"
)

// BearerTokenTransport injects an Earthdata bearer token into requests whose
// host matches Hosts. An empty Hosts list matches every host.
type BearerTokenTransport struct {
	Token string
	Hosts []string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Token == "" || !HostMatches(req.URL.Hostname(), t.Hosts) {
		return base(t.Base).RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.Token)
	return base(t.Base).RoundTrip(clone)
}

// BasicAuthTransport sends Earthdata username and password to matching hosts,
// which is how the Earthdata login redirect accepts credentials.
type BasicAuthTransport struct {
	Username string
	Password string
	Hosts    []string
	Base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Username == "" || !HostMatches(req.URL.Hostname(), t.Hosts) {
		return base(t.Base).RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.Username, t.Password)
	return base(t.Base).RoundTrip(clone)
}

// HostMatches reports whether host equals one of domains or is a subdomain of
// one. An empty domain list matches everything.
func HostMatches(host string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "."))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func base(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
