package router

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	r, err := New(DefaultRoutes())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantChain []ViewID
		wantFound bool
	}{
		{name: "root", path: "/", wantChain: []ViewID{ViewHome}, wantFound: true},
		{name: "homeAlias", path: "/home", wantChain: []ViewID{ViewHome}, wantFound: true},
		{name: "kitchen", path: "/kitchen", wantChain: []ViewID{ViewKitchen}, wantFound: true},
		{name: "adminAlone", path: "/admin", wantChain: []ViewID{ViewAdmin}, wantFound: true},
		{name: "inventory", path: "/admin/inventory", wantChain: []ViewID{ViewAdmin, ViewInventory}, wantFound: true},
		{name: "sales", path: "/admin/sales", wantChain: []ViewID{ViewAdmin, ViewSales}, wantFound: true},
		{name: "trailingSlash", path: "/kitchen/", wantChain: []ViewID{ViewKitchen}, wantFound: true},
		{name: "mixedCase", path: "/Admin/Sales", wantChain: []ViewID{ViewAdmin, ViewSales}, wantFound: true},
		{name: "queryIgnored", path: "/admin/inventory?rows=10", wantChain: []ViewID{ViewAdmin, ViewInventory}, wantFound: true},
		{name: "unknown", path: "/unknown", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "unknownChild", path: "/admin/payroll", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "childWithoutParent", path: "/sales", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "prefixOnly", path: "/kitch", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "empty", path: "", wantChain: []ViewID{ViewHome}, wantFound: true},
		{name: "doubleSlashKitchen", path: "//kitchen", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "doubleSlashUnknown", path: "//reports", wantChain: []ViewID{ViewNotFound}, wantFound: false},
		{name: "doubleSlashChild", path: "/admin//sales", wantChain: []ViewID{ViewNotFound}, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.path)
			if !reflect.DeepEqual(got.Chain, tt.wantChain) {
				t.Errorf("Resolve(%q).Chain = %v, want %v", tt.path, got.Chain, tt.wantChain)
			}
			if got.Found != tt.wantFound {
				t.Errorf("Resolve(%q).Found = %v, want %v", tt.path, got.Found, tt.wantFound)
			}
		})
	}
}

func TestResolveChildAlwaysHasParent(t *testing.T) {
	r, err := New(DefaultRoutes())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, p := range r.Paths() {
		m := r.Resolve(p)
		for i, v := range m.Chain {
			if (v == ViewInventory || v == ViewSales) && (i == 0 || m.Chain[i-1] != ViewAdmin) {
				t.Errorf("Resolve(%q).Chain = %v: %s rendered without admin parent", p, m.Chain, v)
			}
		}
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	r, _ := New(DefaultRoutes())

	m := r.Resolve("/admin/sales")
	m.Chain[0] = ViewKitchen

	if got := r.Resolve("/admin/sales").Chain[0]; got != ViewAdmin {
		t.Errorf("chain mutated through Match: got %v", got)
	}
}

func TestMatchLeaf(t *testing.T) {
	r, _ := New(DefaultRoutes())

	tests := []struct {
		path string
		want ViewID
	}{
		{path: "/", want: ViewHome},
		{path: "/admin", want: ViewAdmin},
		{path: "/admin/inventory", want: ViewInventory},
		{path: "/nowhere", want: ViewNotFound},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.path).Leaf(); got != tt.want {
			t.Errorf("Resolve(%q).Leaf() = %v, want %v", tt.path, got, tt.want)
		}
	}
	if got := (Match{}).Leaf(); got != ViewNotFound {
		t.Errorf("Match{}.Leaf() = %v, want %v", got, ViewNotFound)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
	}{
		{name: "relativeTopLevel", routes: []Route{{Path: "kitchen", View: ViewKitchen}}},
		{name: "missingView", routes: []Route{{Path: "/kitchen"}}},
		{name: "duplicatePath", routes: []Route{{Path: "/kitchen", View: ViewKitchen}, {Path: "/Kitchen/", View: ViewHome}}},
		{name: "duplicateAlias", routes: []Route{{Path: "/", Aliases: []string{"/kitchen"}, View: ViewHome}, {Path: "/kitchen", View: ViewKitchen}}},
		{name: "absoluteChild", routes: []Route{{Path: "/admin", View: ViewAdmin, Children: []Route{{Path: "/sales", View: ViewSales}}}}},
		{name: "reservedView", routes: []Route{{Path: "/missing", View: ViewNotFound}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.routes); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestPaths(t *testing.T) {
	r, _ := New(DefaultRoutes())

	want := []string{"/", "/home", "/kitchen", "/admin", "/admin/inventory", "/admin/sales"}
	if got := r.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/", want: "/"},
		{in: "", want: "/"},
		{in: "/Admin/", want: "/admin"},
		{in: "/admin//", want: "/admin"},
		{in: "/kitchen?x=1#top", want: "/kitchen"},
		{in: "kitchen", want: "/kitchen"},
		{in: "//kitchen", want: "//kitchen"},
		{in: "//reports?x=1", want: "//reports"},
		{in: "/kitchen#a?b", want: "/kitchen"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
