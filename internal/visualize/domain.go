package visualize

import (
	"fmt"
	"hash/fnv"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const unknownDomain = "unknown"

// DomainLabel returns the registrable domain of rawURL ("news.bbc.co.uk" becomes "bbc.co.uk").
// Hosts the public suffix list cannot resolve keep their last two labels.
func DomainLabel(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return unknownDomain
	}
	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) != nil {
		return host
	}

	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}

	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// DomainColor returns a stable rgb() colour for a domain label.
func DomainColor(domain string) string {
	h := fnv.New32a()
	h.Write([]byte(domain))
	v := h.Sum32()
	return fmt.Sprintf("rgb(%d, %d, %d)", v%256, (v*2)%256, (v*3)%256)
}
