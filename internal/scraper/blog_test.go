package scraper

import (
	"testing"

	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// TestBlogStrategyListItems tests inline-content extraction from the
// blog-layout board.
func TestBlogStrategyListItems(t *testing.T) {
	t.Parallel()

	s := &blogStrategy{d: source.Descriptor{
		Code:         "JUNGGU",
		BaseURL:      "https://blog.example.org",
		Mode:         source.ModeBlog,
		ListSelector: "ul.post-list",
		ContentClass: "post-text",
	}}

	t.Run("entries carry their content inline", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="post-list">
			<li>
				<a href="/post/101">부고</a>
				<div class="post-text">고인 홍길동<br>발인 8월 3일</div>
			</li>
		</ul>`

		items, err := s.ListItems(html)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("len(items) = %d, expected 1", len(items))
		}
		if items[0].URL != "https://blog.example.org/post/101" {
			t.Errorf("URL = %q", items[0].URL)
		}
		if items[0].Content != "고인 홍길동\n발인 8월 3일" {
			t.Errorf("Content = %q", items[0].Content)
		}
	})

	t.Run("entries without text are skipped", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="post-list">
			<li><a href="/post/102">장식 항목</a></li>
			<li>
				<a href="/post/103">부고</a>
				<div class="post-text">고인 김아무개</div>
			</li>
		</ul>`

		items, err := s.ListItems(html)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("len(items) = %d, expected 1", len(items))
		}
		if items[0].URL != "https://blog.example.org/post/103" {
			t.Errorf("URL = %q", items[0].URL)
		}
	})

	t.Run("fragment anchors are skipped", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="post-list">
			<li>
				<a href="#">페이지 상단</a>
				<div class="post-text">텍스트는 있으나 링크가 없음</div>
			</li>
		</ul>`

		items, err := s.ListItems(html)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("len(items) = %d, expected 0", len(items))
		}
	})
}
