package ui

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"
)

// IconRegistry holds the icons every template can render by name.
type IconRegistry struct {
	mu    sync.RWMutex
	icons map[string]string
}

func NewIconRegistry() *IconRegistry {
	return &IconRegistry{icons: make(map[string]string)}
}

// Register adds or replaces an icon. body is the inner SVG markup drawn on a
// 24x24 view box.
func (r *IconRegistry) Register(name, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.icons[strings.ToLower(name)] = body
}

// Icon renders the named icon. Unknown names render an empty placeholder.
func (r *IconRegistry) Icon(name string) template.HTML {
	r.mu.RLock()
	body, ok := r.icons[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return template.HTML(fmt.Sprintf(`<span class="icon icon-missing" data-icon="%s"></span>`, template.HTMLEscapeString(name)))
	}
	return template.HTML(fmt.Sprintf(
		`<svg class="icon icon-%s" viewBox="0 0 24 24" width="1em" height="1em" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true">%s</svg>`,
		template.HTMLEscapeString(name), body))
}

func (r *IconRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.icons))
	for name := range r.icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults installs the icon set used by the console views.
func RegisterDefaults(r *IconRegistry) {
	r.Register("house", `<path d="M3 11l9-8 9 8"/><path d="M5 10v10h14V10"/>`)
	r.Register("utensils", `<path d="M7 3v8a2 2 0 0 0 4 0V3"/><path d="M9 11v10"/><path d="M17 3c-2 2-2 6 0 8v10"/>`)
	r.Register("gear", `<circle cx="12" cy="12" r="3"/><path d="M12 2v3M12 19v3M2 12h3M19 12h3M4.9 4.9l2.1 2.1M17 17l2.1 2.1M4.9 19.1L7 17M17 7l2.1-2.1"/>`)
	r.Register("boxes", `<rect x="3" y="12" width="8" height="8"/><rect x="13" y="12" width="8" height="8"/><rect x="8" y="3" width="8" height="8"/>`)
	r.Register("chart-line", `<path d="M3 3v18h18"/><path d="M7 15l4-4 3 3 5-6"/>`)
	r.Register("check", `<path d="M5 12l5 5 9-10"/>`)
	r.Register("xmark", `<path d="M6 6l12 12M18 6L6 18"/>`)
	r.Register("plus", `<path d="M12 5v14M5 12h14"/>`)
	r.Register("minus", `<path d="M5 12h14"/>`)
	r.Register("fire", `<path d="M12 3c1 4 5 5 5 10a5 5 0 0 1-10 0c0-3 2-4 2-6 2 1 3 2 3 4"/>`)
	r.Register("circle-info", `<circle cx="12" cy="12" r="9"/><path d="M12 11v5M12 8h.01"/>`)
	r.Register("triangle-exclamation", `<path d="M12 3l10 18H2z"/><path d="M12 10v4M12 17h.01"/>`)
	r.Register("box-archive", `<rect x="3" y="4" width="18" height="4"/><path d="M5 8v12h14V8M10 12h4"/>`)
	r.Register("rotate-left", `<path d="M4 4v6h6"/><path d="M4 10a8 8 0 1 1 2 6"/>`)
	r.Register("money-bill", `<rect x="2" y="6" width="20" height="12"/><circle cx="12" cy="12" r="3"/>`)
	r.Register("heart-pulse", `<path d="M3 12h4l2-4 4 8 2-4h6"/>`)
}
