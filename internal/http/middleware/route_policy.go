package middleware

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed route_policy.yaml
var defaultRoutePolicy []byte

type RouteRule struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
}

// RoutePolicy lists the routes the auth gate lets through without a token.
// Everything else is protected.
type RoutePolicy struct {
	Public []RouteRule `yaml:"public"`

	public map[string]struct{}
}

// LoadRoutePolicy reads the policy at path, or the embedded default when
// path is empty.
func LoadRoutePolicy(path string) (*RoutePolicy, error) {
	raw := defaultRoutePolicy
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read route policy %s: %w", p, err)
		}
		raw = b
	}
	return ParseRoutePolicy(raw)
}

func ParseRoutePolicy(raw []byte) (*RoutePolicy, error) {
	var p RoutePolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse route policy: %w", err)
	}
	p.public = make(map[string]struct{}, len(p.Public))
	for i, r := range p.Public {
		method := strings.ToUpper(strings.TrimSpace(r.Method))
		path := strings.TrimSpace(r.Path)
		if method == "" || path == "" {
			return nil, fmt.Errorf("route policy: public[%d] needs method and path", i)
		}
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("route policy: public[%d] path %q must start with /", i, path)
		}
		p.public[routeKey(method, path)] = struct{}{}
	}
	return &p, nil
}

// IsPublic matches the gin route pattern (c.FullPath()), not the raw URL.
func (p *RoutePolicy) IsPublic(method, route string) bool {
	if p == nil || route == "" {
		return false
	}
	_, ok := p.public[routeKey(strings.ToUpper(method), route)]
	return ok
}

func routeKey(method, path string) string {
	return method + " " + path
}
