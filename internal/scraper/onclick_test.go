package scraper

import (
	"testing"

	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// TestParseBoardView tests the 6-argument handler shape.
func TestParseBoardView(t *testing.T) {
	t.Parallel()

	t.Run("reconstructs the detail path", func(t *testing.T) {
		t.Parallel()

		path, ok := parseBoardView([]string{"1", "2", "3", "100", "737", "0505050000"})
		if !ok {
			t.Fatal("parseBoardView reported failure")
		}
		want := "/portal/bbs/view.do?mId=0505050000&bIdx=100&ptIdx=737"
		if path != want {
			t.Errorf("path = %q, expected %q", path, want)
		}
	})

	t.Run("too few arguments fail", func(t *testing.T) {
		t.Parallel()

		if _, ok := parseBoardView([]string{"1", "2", "3", "100", "737"}); ok {
			t.Error("parseBoardView accepted 5 arguments")
		}
	})
}

// TestParseGoToView tests the 4-argument handler shape.
func TestParseGoToView(t *testing.T) {
	t.Parallel()

	t.Run("reconstructs the detail path", func(t *testing.T) {
		t.Parallel()

		path, ok := parseGoToView([]string{"", "8821", "385", "0303020000"})
		if !ok {
			t.Fatal("parseGoToView reported failure")
		}
		want := "/portal/bbs/view.do?bIdx=8821&ptIdx=385&mId=0303020000"
		if path != want {
			t.Errorf("path = %q, expected %q", path, want)
		}
	})

	t.Run("too few arguments fail", func(t *testing.T) {
		t.Parallel()

		if _, ok := parseGoToView([]string{"", "8821", "385"}); ok {
			t.Error("parseGoToView accepted 3 arguments")
		}
	})
}

// TestParseOnclickCall tests handler matching and argument splitting.
func TestParseOnclickCall(t *testing.T) {
	t.Parallel()

	t.Run("wrong handler is rejected", func(t *testing.T) {
		t.Parallel()

		_, ok := parseOnclickCall("otherFn('1','2','3','4','5','6')", "boardView(", parseBoardView)
		if ok {
			t.Error("parseOnclickCall matched a foreign handler")
		}
	})

	t.Run("empty attribute is rejected", func(t *testing.T) {
		t.Parallel()

		if _, ok := parseOnclickCall("", "boardView(", parseBoardView); ok {
			t.Error("parseOnclickCall matched an empty attribute")
		}
	})

	t.Run("quoted arguments are extracted in order", func(t *testing.T) {
		t.Parallel()

		path, ok := parseOnclickCall(
			"boardView('1','2','3','100','737','0505050000'); return false;",
			"boardView(", parseBoardView)
		if !ok {
			t.Fatal("parseOnclickCall reported failure")
		}
		if path != "/portal/bbs/view.do?mId=0505050000&bIdx=100&ptIdx=737" {
			t.Errorf("path = %q", path)
		}
	})
}

// TestOnclickStrategy tests list extraction and pagination for the
// handler-based boards.
func TestOnclickStrategy(t *testing.T) {
	t.Parallel()

	desc := source.Descriptor{
		Code:               "SAHA",
		BaseURL:            "https://www.saha.go.kr",
		Mode:               source.ModeOnclick,
		ListSelector:       "table.board-list",
		PaginationSelector: "div.paging",
	}
	s, err := newOnclickStrategy(desc)
	if err != nil {
		t.Fatalf("newOnclickStrategy: %v", err)
	}

	t.Run("list items from handler anchors", func(t *testing.T) {
		t.Parallel()

		html := `<table class="board-list">
			<tr><td><a href="#" onclick="boardView('1','2','3','100','737','0505050000')">부고</a></td></tr>
			<tr><td><a href="#" onclick="location.reload()">새로고침</a></td></tr>
		</table>`

		items, err := s.ListItems(html)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("len(items) = %d, expected 1", len(items))
		}
		want := "https://www.saha.go.kr/portal/bbs/view.do?mId=0505050000&bIdx=100&ptIdx=737"
		if items[0].URL != want {
			t.Errorf("URL = %q, expected %q", items[0].URL, want)
		}
	})

	t.Run("last page from goPage calls in the widget", func(t *testing.T) {
		t.Parallel()

		html := `<div class="paging">
			<a onclick="goPage(1)">1</a>
			<a onclick="goPage(2)">2</a>
			<a onclick="goPage(5)">끝</a>
		</div>`
		if got := s.LastPage(html); got != 5 {
			t.Errorf("LastPage = %d, expected 5", got)
		}
	})

	t.Run("missing widget means a single page", func(t *testing.T) {
		t.Parallel()

		if got := s.LastPage("<html><body>목록</body></html>"); got != 1 {
			t.Errorf("LastPage = %d, expected 1", got)
		}
	})

	t.Run("unknown district has no parser", func(t *testing.T) {
		t.Parallel()

		_, err := newOnclickStrategy(source.Descriptor{Code: "NOWHERE", Mode: source.ModeOnclick})
		if err == nil {
			t.Error("newOnclickStrategy accepted an unknown district")
		}
	})
}

// TestGangseoStrategy tests the data-attribute board.
func TestGangseoStrategy(t *testing.T) {
	t.Parallel()

	desc := source.Descriptor{
		Code:    "GANGSEO",
		BaseURL: "https://www.bsgangseo.go.kr",
		Mode:    source.ModeOnclick,
	}
	s, err := newOnclickStrategy(desc)
	if err != nil {
		t.Fatalf("newOnclickStrategy: %v", err)
	}

	t.Run("list items from data attributes", func(t *testing.T) {
		t.Parallel()

		html := `<ul>
			<li><a href="#" data-req-get-p-idx="4181">부고 1</a></li>
			<li><a href="#" data-req-get-p-idx="4180">부고 2</a></li>
		</ul>`

		items, err := s.ListItems(html)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("len(items) = %d, expected 2", len(items))
		}
		want := "https://www.bsgangseo.go.kr/welfare/board/post/view.do?bcIdx=567&mid=0604030000&&idx=4181"
		if items[0].URL != want {
			t.Errorf("URL = %q, expected %q", items[0].URL, want)
		}
	})

	t.Run("last page scans the whole payload", func(t *testing.T) {
		t.Parallel()

		html := `<script>function move(n){goPage(1);}</script>
			<a onclick="goPage(3)">3</a>
			<script>goPage(7);</script>`
		if got := s.LastPage(html); got != 7 {
			t.Errorf("LastPage = %d, expected 7", got)
		}
	})

	t.Run("no goPage calls means a single page", func(t *testing.T) {
		t.Parallel()

		if got := s.LastPage("<html></html>"); got != 1 {
			t.Errorf("LastPage = %d, expected 1", got)
		}
	})
}
