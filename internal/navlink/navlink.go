// Package navlink renders navigation links to site routes.
//
// Callers name a destination by URI (a page slug) or ask for the home page;
// Resolve maps that to a concrete path using an optional base route pattern
// such as "/pages/{slug}".
package navlink

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// HomeURI is the URI sentinel that always links to the root path.
const HomeURI = "__home__"

const defaultBase = "/{uri}"

// Props describes one link.
type Props struct {
	// URI is the logical destination, usually a page slug.
	URI string
	// Home links to the root path regardless of URI.
	Home bool
	// Href, when set, is used verbatim.
	Href string
	// Base is the route pattern URI is substituted into. The first {name}
	// segment is the placeholder.
	Base  string
	Class string
	// Attrs are rendered after class, e.g. hx-boost.
	Attrs templ.Attributes
}

// Resolve returns the path a link points to.
func Resolve(p Props) string {
	if href := strings.TrimSpace(p.Href); href != "" {
		return href
	}
	base := strings.TrimSpace(p.Base)
	if isHome(p) {
		return rootPath(base)
	}
	if base == "" {
		base = defaultBase
	}
	escaped := escapePath(p.URI)
	start, end, ok := placeholder(base)
	if !ok {
		return strings.TrimRight(base, "/") + "/" + escaped
	}
	return base[:start] + escaped + base[end:]
}

func isHome(p Props) bool {
	if p.Home {
		return true
	}
	switch strings.TrimSpace(p.URI) {
	case HomeURI, "", "/":
		return true
	}
	return false
}

func rootPath(base string) string {
	if base == "" {
		return "/"
	}
	if start, _, ok := placeholder(base); ok {
		base = base[:start]
	}
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/"
	}
	return base
}

// placeholder locates the first {name} segment of base; end is exclusive.
func placeholder(base string) (int, int, bool) {
	start := strings.Index(base, "{")
	if start < 0 {
		return 0, 0, false
	}
	closing := strings.Index(base[start:], "}")
	if closing < 0 {
		return 0, 0, false
	}
	return start, start + closing + 1, true
}

func escapePath(uri string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(uri), "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// Link renders an anchor to the resolved path wrapping the context children.
func Link(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		href := templ.URL(Resolve(p))
		if _, err := io.WriteString(w, `<a href="`+templ.EscapeString(string(href))+`"`); err != nil {
			return err
		}
		if class := strings.TrimSpace(p.Class); class != "" {
			if _, err := io.WriteString(w, ` class="`+templ.EscapeString(class)+`"`); err != nil {
				return err
			}
		}
		if len(p.Attrs) > 0 {
			if err := templ.RenderAttributes(ctx, w, p.Attrs); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if err := children.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</a>")
		return err
	})
}

// WithBase returns a Link constructor with Base fixed to base.
func WithBase(base string) func(Props) templ.Component {
	return func(p Props) templ.Component {
		p.Base = base
		return Link(p)
	}
}
