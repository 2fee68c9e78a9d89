package site

import (
	"bytes"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/pageloader/internal/pagedata"
	apperrors "github.com/louisbranch/pageloader/internal/platform/errors"
	"github.com/louisbranch/pageloader/internal/platform/httpx"
	"github.com/louisbranch/pageloader/internal/site/content"
	"github.com/louisbranch/pageloader/internal/site/templates"
)

const loadErrorMessage = "The page could not be loaded."

func (s *site) servePage(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := httpx.RequestContext(r)
	result, err := s.load(ctx, pageRequest{r: r, slug: slug})
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("load page data")
		s.renderPage(w, r, apperrors.HTTPStatus(err), "Error", templates.Chrome{}, templates.LoadError(loadErrorMessage))
		return
	}

	chrome := s.chromeFrom(result)
	if s.isUnmatched(result.Handle) {
		s.renderPage(w, r, http.StatusNotFound, "Page not found", chrome, templates.NotFound(stringValue(result.NotFound, keySuggestion)))
		return
	}
	if pageGone(result) {
		s.renderPage(w, r, http.StatusNotFound, "Page not found", chrome, templates.NotFound(""))
		return
	}
	if message, failed := pagedata.ErrorText(result.PageData); failed {
		s.logger.Error().Str("error", message).Str("path", r.URL.Path).Msg("page data failed")
		s.renderPage(w, r, http.StatusInternalServerError, "Error", chrome, templates.LoadError(loadErrorMessage))
		return
	}
	view := templates.PageView{
		Title:     stringValue(result.PageData, keyTitle),
		Summary:   stringValue(result.PageData, keySummary),
		Body:      stringValue(result.PageData, keyBody),
		UpdatedAt: timeValue(result.PageData, keyUpdatedAt),
	}
	s.renderPage(w, r, http.StatusOK, view.Title, chrome, templates.Page(view))
}

// renderPage writes body inside the layout, or only the main region for
// HTMX requests.
func (s *site) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, chrome templates.Chrome, body templ.Component) {
	ctx := templ.WithChildren(httpx.RequestContext(r), body)
	page := templates.Layout(title, chrome)
	if httpx.IsHTMXRequest(r) {
		page = templates.Main()
	}
	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("render page")
		_ = httpx.WriteText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	_ = httpx.WriteHTML(w, status, buf.Bytes())
}

func (s *site) serveAPI(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := httpx.RequestContext(r)
	result, err := s.load(ctx, pageRequest{r: r, slug: slug, api: true})
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("load page data")
		_ = httpx.WriteJSON(w, apperrors.HTTPStatus(err), map[string]string{pagedata.ErrorKey: "page data unavailable"})
		return
	}
	status := http.StatusOK
	if s.isUnmatched(result.Handle) || pageGone(result) {
		status = http.StatusNotFound
	} else if _, failed := pagedata.ErrorText(result.PageData); failed {
		status = http.StatusInternalServerError
	}
	_ = httpx.WriteJSON(w, status, result)
}

// pageGone reports a matched route whose page was missing at load time.
func pageGone(result pagedata.Result) bool {
	return pagedata.Truthy(result.PageData[pagedata.NotFoundKey])
}

func (s *site) isUnmatched(handle string) bool {
	return handle == "" || handle == s.errorHandle
}

// chromeFrom reads layout state from app data, keeping defaults for missing
// or failed data.
func (s *site) chromeFrom(result pagedata.Result) templates.Chrome {
	chrome := templates.Chrome{
		CurrentSlug: stringValue(result.PageData, keySlug),
	}
	if message, failed := pagedata.ErrorText(result.AppData); failed {
		s.logger.Warn().Str("error", message).Msg("render without app data")
		return chrome
	}
	chrome.SiteName = stringValue(result.AppData, keySiteName)
	chrome.Tagline = stringValue(result.AppData, keyTagline)
	chrome.Lang = stringValue(result.AppData, keyLang)
	if nav, ok := result.AppData[keyNav].([]content.PageSummary); ok {
		chrome.Nav = nav
	}
	return chrome
}

func stringValue(data pagedata.Data, key string) string {
	value, _ := data[key].(string)
	return value
}

func timeValue(data pagedata.Data, key string) time.Time {
	value, _ := data[key].(time.Time)
	return value
}
