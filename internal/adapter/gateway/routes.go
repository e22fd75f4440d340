package gateway

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Route maps a path prefix to an upstream base URL.
type Route struct {
	Prefix      string   `yaml:"prefix" validate:"required,startswith=/"`
	Upstream    string   `yaml:"upstream" validate:"required,url"`
	StripPrefix bool     `yaml:"strip_prefix"`
	Methods     []string `yaml:"methods" validate:"dive,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
}

// RouteFile is the on-disk layout of the route table.
type RouteFile struct {
	Routes []Route `yaml:"routes" validate:"required,min=1,dive"`
}

var validate = validator.New()

// LoadRoutes reads and validates a route file.
func LoadRoutes(path string) (RouteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RouteFile{}, fmt.Errorf("read routes: %w", err)
	}
	return ParseRoutes(data)
}

// ParseRoutes decodes a YAML route table. Unknown keys are rejected.
func ParseRoutes(data []byte) (RouteFile, error) {
	var f RouteFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return RouteFile{}, fmt.Errorf("decode routes: %w", err)
	}
	for i := range f.Routes {
		r := &f.Routes[i]
		if len(r.Prefix) > 1 {
			r.Prefix = strings.TrimRight(r.Prefix, "/")
		}
		for j, m := range r.Methods {
			r.Methods[j] = strings.ToUpper(m)
		}
	}
	if err := validate.Struct(f); err != nil {
		return RouteFile{}, fmt.Errorf("validate routes: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Routes))
	for _, r := range f.Routes {
		if _, dup := seen[r.Prefix]; dup {
			return RouteFile{}, fmt.Errorf("validate routes: duplicate prefix %q", r.Prefix)
		}
		seen[r.Prefix] = struct{}{}
	}
	return f, nil
}

type route struct {
	Route
	target  *url.URL
	methods map[string]struct{}
}

// table holds routes ordered by descending prefix length.
type table struct {
	routes []*route
}

func newTable(f RouteFile) (*table, error) {
	t := &table{routes: make([]*route, 0, len(f.Routes))}
	for _, r := range f.Routes {
		target, err := url.Parse(r.Upstream)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", r.Prefix, err)
		}
		rt := &route{Route: r, target: target}
		if len(r.Methods) > 0 {
			rt.methods = make(map[string]struct{}, len(r.Methods))
			for _, m := range r.Methods {
				rt.methods[m] = struct{}{}
			}
		}
		t.routes = append(t.routes, rt)
	}
	sort.SliceStable(t.routes, func(i, j int) bool {
		return len(t.routes[i].Prefix) > len(t.routes[j].Prefix)
	})
	return t, nil
}

// match returns the route with the longest prefix covering path.
// A prefix covers the path itself and anything below it, never a sibling
// such as /api/v1/postsX for /api/v1/posts.
func (t *table) match(path string) *route {
	for _, r := range t.routes {
		if r.Prefix == "/" || path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r
		}
	}
	return nil
}

func (r *route) allows(method string) bool {
	if r.methods == nil {
		return true
	}
	_, ok := r.methods[method]
	return ok
}

// upstreamPath is the path sent upstream.
func (r *route) upstreamPath(path string) string {
	if !r.StripPrefix || r.Prefix == "/" {
		return path
	}
	rest := strings.TrimPrefix(path, r.Prefix)
	if rest == "" {
		return "/"
	}
	return rest
}
