package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/pageloader/internal/platform/errors"
	"github.com/louisbranch/pageloader/internal/site/content"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path to be rejected")
	}
}

func TestOpenInMemory(t *testing.T) {
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer store.Close()

	if err := store.PutSetting(context.Background(), content.SettingSiteName, "Docs"); err != nil {
		t.Fatalf("put setting: %v", err)
	}
	settings, err := store.Settings(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings[content.SettingSiteName] != "Docs" {
		t.Fatalf("site name = %q, want Docs", settings[content.SettingSiteName])
	}
}

func TestPutAndGetPage(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.PutPage(ctx, content.Page{Slug: "about", Title: "About", Summary: "Who", Body: "Hello", UpdatedAt: updated}); err != nil {
		t.Fatalf("put page: %v", err)
	}
	got, err := store.GetPage(ctx, "about")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if got.Title != "About" || got.Summary != "Who" || got.Body != "Hello" {
		t.Fatalf("page = %+v, want stored fields", got)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}

	if err := store.PutPage(ctx, content.Page{Slug: "about", Title: "About us"}); err != nil {
		t.Fatalf("replace page: %v", err)
	}
	got, err = store.GetPage(ctx, "about")
	if err != nil {
		t.Fatalf("get replaced page: %v", err)
	}
	if got.Title != "About us" {
		t.Fatalf("Title = %q, want replaced title", got.Title)
	}
}

func TestGetPageNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetPage(context.Background(), "missing")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("GetPage() error = %v, want not found", err)
	}
}

func TestPutPageValidates(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutPage(context.Background(), content.Page{Title: "No slug"}); apperrors.KindOf(err) != apperrors.KindInvalidInput {
		t.Fatalf("PutPage() error = %v, want invalid input", err)
	}
	if err := store.PutPage(context.Background(), content.Page{Slug: "x"}); apperrors.KindOf(err) != apperrors.KindInvalidInput {
		t.Fatalf("PutPage() error = %v, want invalid input", err)
	}
	if err := store.PutSetting(context.Background(), "", "v"); apperrors.KindOf(err) != apperrors.KindInvalidInput {
		t.Fatalf("PutSetting() error = %v, want invalid input", err)
	}
}

func TestListPagesOrdersBySlug(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	for _, slug := range []string{"zeta", "about", "home"} {
		if err := store.PutPage(ctx, content.Page{Slug: slug, Title: slug}); err != nil {
			t.Fatalf("put page %s: %v", slug, err)
		}
	}

	pages, err := store.ListPages(ctx)
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	var slugs []string
	for _, page := range pages {
		slugs = append(slugs, page.Slug)
	}
	if len(slugs) != 3 || slugs[0] != "about" || slugs[1] != "home" || slugs[2] != "zeta" {
		t.Fatalf("slugs = %v, want [about home zeta]", slugs)
	}
}

func TestReopenKeepsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.PutPage(ctx, content.Page{Slug: "home", Title: "Home"}); err != nil {
		t.Fatalf("put page: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetPage(ctx, "home"); err != nil {
		t.Fatalf("get page after reopen: %v", err)
	}
}
