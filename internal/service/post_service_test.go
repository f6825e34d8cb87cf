package service

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/groundworkcms/internal/db"
)

func setupPostTestDB(t *testing.T) (*PostService, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&db.Post{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return NewPostService(gdb), func() {
		gdb.Where("1 = 1").Delete(&db.Post{})
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestPostCreateSlugAndPublishStamp(t *testing.T) {
	svc, cleanup := setupPostTestDB(t)
	defer cleanup()

	if _, err := svc.Create(PostInput{Title: "   "}); err != ErrPostTitleMissing {
		t.Fatalf("expected title error, got %v", err)
	}

	draft, err := svc.Create(PostInput{Title: "Breaking Ground in Spring!", Status: StatusDraft})
	if err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	if draft.Slug != "breaking-ground-in-spring" {
		t.Fatalf("expected slug derived from title, got %q", draft.Slug)
	}
	if draft.PublishedAt != nil {
		t.Fatalf("draft must not carry a publish stamp")
	}

	if _, err := svc.Create(PostInput{Title: "Breaking Ground in Spring"}); err != ErrPostSlugTaken {
		t.Fatalf("expected slug conflict, got %v", err)
	}

	published, err := svc.Update(draft.ID, PostInput{
		Title:  draft.Title,
		Slug:   draft.Slug,
		Status: StatusPublished,
	})
	if err != nil {
		t.Fatalf("failed to publish post: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatalf("expected publish stamp on first publish")
	}

	stamp := *published.PublishedAt
	republished, err := svc.Update(draft.ID, PostInput{
		Title:  draft.Title,
		Slug:   draft.Slug,
		Status: StatusPublished,
	})
	if err != nil {
		t.Fatalf("failed to re-save post: %v", err)
	}
	if republished.PublishedAt == nil || republished.PublishedAt.Unix() != stamp.Unix() {
		t.Fatalf("expected original publish stamp kept on re-save")
	}
}

func TestPostRenderBodySanitizesMarkdown(t *testing.T) {
	svc, cleanup := setupPostTestDB(t)
	defer cleanup()

	post := &db.Post{Body: "## Site update\n\nNew **crane** on site.\n\n<script>alert(1)</script>"}
	rendered, err := svc.RenderBody(post)
	if err != nil {
		t.Fatalf("failed to render body: %v", err)
	}

	if !strings.Contains(rendered, "<h2") {
		t.Fatalf("expected heading rendered, got %q", rendered)
	}
	if !strings.Contains(rendered, "<strong>crane</strong>") {
		t.Fatalf("expected bold text rendered, got %q", rendered)
	}
	if strings.Contains(rendered, "<script") {
		t.Fatalf("expected script tags stripped, got %q", rendered)
	}
}

func TestPostListPublishedExcludesDrafts(t *testing.T) {
	svc, cleanup := setupPostTestDB(t)
	defer cleanup()

	if _, err := svc.Create(PostInput{Title: "Published One", Status: StatusPublished}); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Hidden Draft", Status: StatusDraft}); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	result, err := svc.ListPublished(1, 10)
	if err != nil {
		t.Fatalf("failed to list published posts: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected a single published post, got total=%d items=%d", result.Total, len(result.Items))
	}
	if result.Items[0].Title != "Published One" {
		t.Fatalf("unexpected post in published listing: %q", result.Items[0].Title)
	}
}
