// Package probe talks to the world outside the configuration snapshot:
// the search index root endpoint over HTTP, and the host kernel for total memory.
//
// VersionProbe wraps any Getter in a bounded retry loop with a fixed delay:
//
//	http := probe.NewHTTPProbe(url, probe.BasicAuth(user, pass))
//	major := probe.NewVersionProbe(http).MajorVersion(ctx) // 0 when unreachable
package probe
