// Package content defines the pages and site settings served by the site.
package content

import (
	"context"
	"time"
)

// Setting keys read by the site chrome.
const (
	SettingSiteName = "site_name"
	SettingTagline  = "tagline"
	SettingLanguage = "language"
)

// HomeSlug is the slug of the page served at the site root.
const HomeSlug = "home"

// Page is one published page.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	UpdatedAt time.Time
}

// PageSummary is the navigation view of a page.
type PageSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Store reads site content.
type Store interface {
	GetPage(ctx context.Context, slug string) (Page, error)
	ListPages(ctx context.Context) ([]PageSummary, error)
	Settings(ctx context.Context) (map[string]string, error)
}

// Writer stores site content.
type Writer interface {
	PutPage(ctx context.Context, page Page) error
	PutSetting(ctx context.Context, key, value string) error
}
