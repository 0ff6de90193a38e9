// Package router maps console paths to the chain of views that renders them.
package router

import (
	"fmt"
	"strings"
)

// ViewID names a view the console can render.
type ViewID string

const (
	ViewHome      ViewID = "home"
	ViewKitchen   ViewID = "kitchen"
	ViewAdmin     ViewID = "admin"
	ViewInventory ViewID = "inventory"
	ViewSales     ViewID = "sales"
	ViewNotFound  ViewID = "not-found"
)

// Route binds a path segment to a view. Children are nested under the
// parent's path and render inside the parent's outlet.
type Route struct {
	Path     string
	Aliases  []string
	View     ViewID
	Children []Route
}

// Match is the result of resolving a path. Chain lists views from the
// outermost to the innermost.
type Match struct {
	Path  string
	Chain []ViewID
	Found bool
}

// Leaf returns the innermost view of the chain.
func (m Match) Leaf() ViewID {
	if len(m.Chain) == 0 {
		return ViewNotFound
	}
	return m.Chain[len(m.Chain)-1]
}

// Router resolves paths against a static table.
type Router struct {
	table map[string][]ViewID
	paths []string
}

// DefaultRoutes is the console's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Aliases: []string{"/home"}, View: ViewHome},
		{Path: "/kitchen", View: ViewKitchen},
		{
			Path: "/admin",
			View: ViewAdmin,
			Children: []Route{
				{Path: "inventory", View: ViewInventory},
				{Path: "sales", View: ViewSales},
			},
		},
	}
}

// New builds a router from routes, rejecting tables with duplicate paths,
// relative top-level paths or routes without a view.
func New(routes []Route) (*Router, error) {
	r := &Router{table: make(map[string][]ViewID)}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("route %q: path must be absolute", route.Path)
		}
		if err := r.add("", nil, route); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Router) add(prefix string, parents []ViewID, route Route) error {
	if route.View == "" {
		return fmt.Errorf("route %q: view is required", route.Path)
	}
	if route.View == ViewNotFound {
		return fmt.Errorf("route %q: %s is reserved", route.Path, ViewNotFound)
	}

	chain := make([]ViewID, 0, len(parents)+1)
	chain = append(chain, parents...)
	chain = append(chain, route.View)

	for _, p := range append([]string{route.Path}, route.Aliases...) {
		full := Normalize(join(prefix, p))
		if _, exists := r.table[full]; exists {
			return fmt.Errorf("route %q: duplicate path", full)
		}
		r.table[full] = chain
		r.paths = append(r.paths, full)
	}

	base := Normalize(join(prefix, route.Path))
	for _, child := range route.Children {
		if strings.HasPrefix(child.Path, "/") {
			return fmt.Errorf("route %q: child path must be relative", child.Path)
		}
		if err := r.add(base, chain, child); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the render chain for path. Matching is exact after
// normalisation; unknown paths resolve to the not-found view.
func (r *Router) Resolve(path string) Match {
	key := Normalize(path)
	chain, ok := r.table[key]
	if !ok {
		return Match{Path: key, Chain: []ViewID{ViewNotFound}, Found: false}
	}
	out := make([]ViewID, len(chain))
	copy(out, chain)
	return Match{Path: key, Chain: out, Found: true}
}

// Paths lists every addressable path in registration order.
func (r *Router) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Normalize drops query and fragment, lower-cases the path and removes a
// trailing slash. Inner and leading repeated slashes are kept, so "//kitchen"
// matches no route.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func join(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		if strings.HasPrefix(path, "/") {
			return path
		}
		return "/" + path
	}
	return prefix + "/" + strings.TrimPrefix(path, "/")
}
