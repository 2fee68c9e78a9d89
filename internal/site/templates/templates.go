// Package templates holds the templ components that render site pages.
package templates

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/pageloader/internal/navlink"
	"github.com/louisbranch/pageloader/internal/site/content"
	"github.com/louisbranch/pageloader/internal/site/routepath"
)

// DefaultSiteName is shown when no site name is configured.
const DefaultSiteName = "Pageloader"

var pageLink = navlink.WithBase(routepath.PagePattern)

// Chrome is the shared layout state loaded from app data.
type Chrome struct {
	SiteName    string
	Tagline     string
	Lang        string
	Nav         []content.PageSummary
	CurrentSlug string
}

// PageView is the page body loaded from page data.
type PageView struct {
	Title     string
	Summary   string
	Body      string
	UpdatedAt time.Time
}

// htmlWriter keeps the first write error so components read top to bottom.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func siteName(chrome Chrome) string {
	if name := strings.TrimSpace(chrome.SiteName); name != "" {
		return name
	}
	return DefaultSiteName
}

// ComposeTitle appends the site name to a page title.
func ComposeTitle(title string, chrome Chrome) string {
	name := siteName(chrome)
	title = strings.TrimSpace(title)
	if title == "" || title == name {
		return name
	}
	return title + " | " + name
}

// Layout renders a full HTML document around the context children.
func Layout(title string, chrome Chrome) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		lang := strings.TrimSpace(chrome.Lang)
		if lang == "" {
			lang = "en"
		}
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="`)
		h.text(lang)
		h.raw(`"><head><meta charset="utf-8"><title>`)
		h.text(ComposeTitle(title, chrome))
		h.raw(`</title></head><body><header><div class="brand">`)
		h.render(templ.WithChildren(ctx, text(siteName(chrome))), navlink.Link(navlink.Props{Home: true, Class: "brand-link"}))
		h.raw(`</div>`)
		if tagline := strings.TrimSpace(chrome.Tagline); tagline != "" {
			h.raw(`<p class="tagline">`)
			h.text(tagline)
			h.raw(`</p>`)
		}
		h.render(ctx, Nav(chrome))
		h.raw(`</header>`)
		h.render(templ.WithChildren(ctx, children), Main())
		h.raw(`</body></html>`)
		return h.err
	})
}

// Nav renders the page navigation list.
func Nav(chrome Chrome) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(chrome.Nav) == 0 {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<nav><ul>`)
		for _, page := range chrome.Nav {
			class := ""
			if page.Slug == chrome.CurrentSlug {
				class = "active"
			}
			link := pageLink(navlink.Props{URI: page.Slug, Class: class})
			if page.Slug == content.HomeSlug {
				link = navlink.Link(navlink.Props{URI: navlink.HomeURI, Class: class})
			}
			label := strings.TrimSpace(page.Title)
			if label == "" {
				label = page.Slug
			}
			h.raw(`<li>`)
			h.render(templ.WithChildren(ctx, text(label)), link)
			h.raw(`</li>`)
		}
		h.raw(`</ul></nav>`)
		return h.err
	})
}

// Main renders the main content region around the context children. HTMX
// requests receive only this fragment.
func Main() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		h := &htmlWriter{w: w}
		h.raw(`<main id="main">`)
		h.render(ctx, children)
		h.raw(`</main>`)
		return h.err
	})
}

// Page renders a page article.
func Page(view PageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article><h1>`)
		h.text(view.Title)
		h.raw(`</h1>`)
		if summary := strings.TrimSpace(view.Summary); summary != "" {
			h.raw(`<p class="summary">`)
			h.text(summary)
			h.raw(`</p>`)
		}
		for _, paragraph := range Paragraphs(view.Body) {
			h.raw(`<p>`)
			h.text(paragraph)
			h.raw(`</p>`)
		}
		if !view.UpdatedAt.IsZero() {
			h.raw(`<footer><time datetime="`)
			h.text(view.UpdatedAt.UTC().Format(time.RFC3339))
			h.raw(`">`)
			h.text(view.UpdatedAt.UTC().Format("2 Jan 2006"))
			h.raw(`</time></footer>`)
		}
		h.raw(`</article>`)
		return h.err
	})
}

// NotFound renders the missing-page state, linking to suggestion when set.
func NotFound(suggestion string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="not-found"><h1>Page not found</h1>`)
		if suggestion = strings.TrimSpace(suggestion); suggestion != "" {
			h.raw(`<p>Did you mean `)
			h.render(templ.WithChildren(ctx, text(suggestion)), pageLink(navlink.Props{URI: suggestion}))
			h.raw(`?</p>`)
		}
		h.raw(`<p>`)
		h.render(templ.WithChildren(ctx, text("Back to the home page")), navlink.Link(navlink.Props{Home: true}))
		h.raw(`</p></section>`)
		return h.err
	})
}

// LoadError renders a captured data-loading failure.
func LoadError(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="load-error"><h1>Something went wrong</h1><p>`)
		h.text(message)
		h.raw(`</p></section>`)
		return h.err
	})
}

// Paragraphs splits body on blank lines, dropping empty paragraphs.
func Paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}
