// Package jarx implements an in-memory cookie jar that, unlike
// net/http/cookiejar, can be serialized to JSON and restored. Session
// credentials survive process restarts by round-tripping the jar through
// the credential file.
//
// Matching is a practical subset of RFC 6265: enough for first-party API
// traffic, with no public-suffix handling.
package jarx

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cookie is the serialized form of a single jar entry.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"http_only"`
	HostOnly bool      `json:"host_only"`
}

func (c *Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

type jarKey struct {
	domain string
	path   string
	name   string
}

// Jar is a thread-safe cookie jar. The zero value is not usable; call New.
type Jar struct {
	mu      sync.RWMutex
	entries map[jarKey]Cookie

	now func() time.Time
}

var _ http.CookieJar = (*Jar)(nil)

func New() *Jar {
	return &Jar{
		entries: make(map[jarKey]Cookie),
		now:     time.Now,
	}
}

// SetCookies stores the cookies from a response to u. Expired cookies and
// cookies whose domain attribute does not cover the request host are
// dropped, deletions (negative max-age) remove existing entries.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	host := canonicalHost(u.Host)
	if host == "" {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}

		domain := strings.ToLower(strings.TrimPrefix(c.Domain, "."))
		hostOnly := false
		if domain == "" {
			domain = host
			hostOnly = true
		} else if !domainMatch(host, domain) {
			// The server tried to set a cookie for a foreign domain.
			continue
		}

		path := c.Path
		if !strings.HasPrefix(path, "/") {
			path = defaultPath(u.Path)
		}

		key := jarKey{domain: domain, path: path, name: c.Name}

		var expires time.Time
		switch {
		case c.MaxAge < 0:
			delete(j.entries, key)
			continue
		case c.MaxAge > 0:
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		default:
			expires = c.Expires
		}
		if !expires.IsZero() && !expires.After(now) {
			delete(j.entries, key)
			continue
		}

		j.entries[key] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			HostOnly: hostOnly,
		}
	}
}

// Cookies returns the cookies to send with a request to u, longest path
// first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	host := canonicalHost(u.Host)
	if host == "" {
		return nil
	}
	https := u.Scheme == "https"
	path := u.Path
	if path == "" {
		path = "/"
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now()
	var selected []Cookie
	for _, c := range j.entries {
		if c.expired(now) {
			continue
		}
		if c.Secure && !https {
			continue
		}
		if c.HostOnly {
			if host != c.Domain {
				continue
			}
		} else if !domainMatch(host, c.Domain) {
			continue
		}
		if !pathMatch(path, c.Path) {
			continue
		}
		selected = append(selected, c)
	}

	sort.Slice(selected, func(i, k int) bool {
		if len(selected[i].Path) != len(selected[k].Path) {
			return len(selected[i].Path) > len(selected[k].Path)
		}
		return selected[i].Name < selected[k].Name
	})

	out := make([]*http.Cookie, 0, len(selected))
	for _, c := range selected {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Value looks up a live cookie by name under domain or any of its
// subdomains. The second result reports whether it was found.
func (j *Jar) Value(domain, name string) (string, bool) {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))

	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now()
	for _, c := range j.entries {
		if c.Name != name || c.expired(now) {
			continue
		}
		if c.Domain == domain || domainMatch(c.Domain, domain) {
			return c.Value, true
		}
	}
	return "", false
}

// Snapshot serializes the current jar contents as a JSON array, sorted for
// stable output.
func (j *Jar) Snapshot() (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	list := make([]Cookie, 0, len(j.entries))
	for _, c := range j.entries {
		list = append(list, c)
	}
	sort.Slice(list, func(i, k int) bool {
		a, b := list[i], list[k]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})

	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Restore replaces the jar contents with a previous Snapshot. An empty
// string clears the jar.
func (j *Jar) Restore(snapshot string) error {
	entries := make(map[jarKey]Cookie)
	if snapshot != "" {
		var list []Cookie
		if err := json.Unmarshal([]byte(snapshot), &list); err != nil {
			return err
		}
		for _, c := range list {
			c.Domain = strings.ToLower(strings.TrimPrefix(c.Domain, "."))
			if c.Path == "" {
				c.Path = "/"
			}
			entries[jarKey{domain: c.Domain, path: c.Path, name: c.Name}] = c
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = entries
	return nil
}

// canonicalHost lowercases the host and strips an optional port.
func canonicalHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

// domainMatch reports whether host is domain itself or one of its
// subdomains.
func domainMatch(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathMatch implements RFC 6265 section 5.1.4 path matching.
func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

// defaultPath derives the cookie default path from the request path, per
// RFC 6265 section 5.1.4.
func defaultPath(reqPath string) string {
	if !strings.HasPrefix(reqPath, "/") {
		return "/"
	}
	i := strings.LastIndex(reqPath, "/")
	if i == 0 {
		return "/"
	}
	return reqPath[:i]
}
