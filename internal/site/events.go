package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/louisbranch/pageloader/internal/pagedata"
	apperrors "github.com/louisbranch/pageloader/internal/platform/errors"
	"github.com/louisbranch/pageloader/internal/platform/httpx"
	"github.com/louisbranch/pageloader/internal/site/content"
	"golang.org/x/text/language"
)

// Route handles reported in the Events bundle.
const (
	HandleHome = "home"
	HandlePage = "page"
)

// App data keys.
const (
	keySiteName = "siteName"
	keyTagline  = "tagline"
	keyLang     = "lang"
	keyNav      = "nav"
)

// Page data keys.
const (
	keySlug      = "slug"
	keyTitle     = "title"
	keySummary   = "summary"
	keyBody      = "body"
	keyUpdatedAt = "updatedAt"
)

// Extra keys passed through to the result.
const (
	keyPath       = "path"
	keyRequestID  = "requestID"
	keySuggestion = "suggestion"
)

// pageRequest is the single argument the site passes to its loader.
type pageRequest struct {
	r *http.Request
	// slug is empty when no page route matched the path.
	slug string
	// api requests skip fallback data for unmatched routes.
	api bool
}

var errMissingRequest = errors.New("page request argument is required")

func requestArg(args []any) (pageRequest, error) {
	if len(args) == 0 {
		return pageRequest{}, errMissingRequest
	}
	req, ok := args[0].(pageRequest)
	if !ok || req.r == nil {
		return pageRequest{}, errMissingRequest
	}
	return req, nil
}

// resolveEvents maps a page request onto the producers the loader runs.
func (s *site) resolveEvents(ctx context.Context, args ...any) (pagedata.Events, error) {
	req, err := requestArg(args)
	if err != nil {
		return pagedata.Events{}, err
	}
	pages, err := s.store.ListPages(ctx)
	if err != nil {
		return pagedata.Events{}, fmt.Errorf("list pages: %w", err)
	}

	events := pagedata.Events{
		SetupAppData: s.appData(req.r, pages),
		OnNotFound:   s.notFound(req, pages),
		Extra: map[string]any{
			keyPath:      req.r.URL.Path,
			keyRequestID: httpx.RequestIDFromContext(ctx),
		},
	}
	switch {
	case req.slug == "":
		events.SetupPageData = missingPageData(req.r.URL.Path)
	case hasPage(pages, req.slug):
		events.Handle = HandlePage
		if req.slug == content.HomeSlug {
			events.Handle = HandleHome
		}
		events.SetupPageData = s.pageData(req.slug)
	default:
		events.Handle = s.errorHandle
		events.SetupPageData = missingPageData(req.slug)
	}
	return events, nil
}

func hasPage(pages []content.PageSummary, slug string) bool {
	for _, page := range pages {
		if page.Slug == slug {
			return true
		}
	}
	return false
}

func (s *site) appData(r *http.Request, pages []content.PageSummary) pagedata.Producer {
	return func(ctx context.Context) (pagedata.Data, error) {
		settings, err := s.store.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return pagedata.Data{
			keySiteName: settings[content.SettingSiteName],
			keyTagline:  settings[content.SettingTagline],
			keyLang:     s.negotiateLanguage(r, settings[content.SettingLanguage]),
			keyNav:      pages,
		}, nil
	}
}

func (s *site) pageData(slug string) pagedata.Producer {
	return func(ctx context.Context) (pagedata.Data, error) {
		page, err := s.store.GetPage(ctx, slug)
		if apperrors.IsNotFound(err) {
			// Removed after the route matched.
			return pagedata.Data{
				pagedata.NotFoundKey: true,
				keyTitle:             "Page not found",
				keySlug:              slug,
			}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load page %q: %w", slug, err)
		}
		return pagedata.Data{
			keySlug:      page.Slug,
			keyTitle:     page.Title,
			keySummary:   page.Summary,
			keyBody:      page.Body,
			keyUpdatedAt: page.UpdatedAt,
		}, nil
	}
}

func missingPageData(target string) pagedata.Producer {
	return func(context.Context) (pagedata.Data, error) {
		return pagedata.Data{
			keyTitle: "Page not found",
			keySlug:  target,
		}, nil
	}
}

// notFound decides whether an unmatched route still renders site chrome.
// HTML requests do, with a suggested page; API requests do not.
func (s *site) notFound(req pageRequest, pages []content.PageSummary) pagedata.Producer {
	return func(context.Context) (pagedata.Data, error) {
		if req.api {
			return pagedata.Data{pagedata.NotFoundKey: false}, nil
		}
		target := req.slug
		if target == "" {
			target = strings.Trim(req.r.URL.Path, "/")
		}
		data := pagedata.Data{pagedata.NotFoundKey: true}
		if suggestion := Suggest(target, pages); suggestion != "" {
			data[keySuggestion] = suggestion
		}
		return data, nil
	}
}

// Suggest returns the page slug closest to target by edit distance, or ""
// when none is close enough. Ties go to the first slug in pages.
func Suggest(target string, pages []content.PageSummary) string {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return ""
	}
	limit := len(target) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDistance := "", limit+1
	for _, page := range pages {
		distance := levenshtein.ComputeDistance(target, strings.ToLower(page.Slug))
		if distance < bestDistance {
			best, bestDistance = page.Slug, distance
		}
	}
	return best
}

func (s *site) negotiateLanguage(r *http.Request, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = s.languages[0].String()
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := s.matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return s.languages[index].String()
}
