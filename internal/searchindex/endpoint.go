package searchindex

import (
	"net"
	"strconv"
	"strings"

	"github.com/Aman-CERP/serverpreflight/internal/probe"
)

// External reports whether the operator pointed the server at an external search index.
func (v *Validator) External() bool {
	return v.snap.Search.External
}

// SearchEngineURL is the base URL probed for the version: the external URL
// when external, otherwise the internal index on its VIP and port.
func (v *Validator) SearchEngineURL() string {
	if v.External() {
		return v.snap.Search.ExternalURL
	}
	return "http://" + net.JoinHostPort(normalizeHost(v.snap.Search.VIP), strconv.Itoa(v.snap.Search.Port))
}

// AuthHeader returns the basic auth header for the resolved credential pair,
// or "" when the pair is incomplete.
func (v *Validator) AuthHeader() string {
	creds := v.snap.Erchef.Credentials
	if !creds.Complete() {
		return ""
	}
	return probe.BasicAuth(*creds.Username, *creds.Password)
}

// normalizeHost strips brackets from IPv6 literals so JoinHostPort can add
// exactly one pair back.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	trimmed := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if ip := net.ParseIP(trimmed); ip != nil {
		return ip.String()
	}
	return host
}
