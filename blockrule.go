package htmlrender

import (
	"net/url"
	"strings"
)

// BlockRule decides which outgoing browser requests are aborted. It is
// immutable and safe for concurrent use.
type BlockRule struct {
	hosts []string
}

// DefaultFontHosts are remote web-font hosts. Requests to them are aborted
// because an unreachable font host would otherwise stall the page.
var DefaultFontHosts = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"use.typekit.net",
	"p.typekit.net",
	"fonts.bunny.net",
	"use.fontawesome.com",
	"kit.fontawesome.com",
}

// NewBlockRule returns a rule matching requests to any of hosts or their
// subdomains. Hosts are compared case-insensitively.
func NewBlockRule(hosts ...string) BlockRule {
	r := BlockRule{hosts: make([]string, 0, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			r.hosts = append(r.hosts, h)
		}
	}
	return r
}

// DefaultBlockRule blocks [DefaultFontHosts].
func DefaultBlockRule() BlockRule {
	return NewBlockRule(DefaultFontHosts...)
}

// Empty reports whether the rule blocks nothing.
func (r BlockRule) Empty() bool { return len(r.hosts) == 0 }

// Hosts returns a copy of the blocked hosts.
func (r BlockRule) Hosts() []string {
	return append([]string(nil), r.hosts...)
}

// Match reports whether a request to rawURL must be blocked.
func (r BlockRule) Match(rawURL string) bool {
	if r.Empty() {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, h := range r.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Patterns returns URL glob patterns covering the blocked hosts, suitable
// for DevTools request interception. Matches still go through [BlockRule.Match].
func (r BlockRule) Patterns() []string {
	out := make([]string, 0, 2*len(r.hosts))
	for _, h := range r.hosts {
		out = append(out, "*://"+h+"/*", "*://*."+h+"/*")
	}
	return out
}
