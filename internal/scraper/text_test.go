package scraper

import "testing"

// TestBrToNewline tests br-tag normalization.
func TestBrToNewline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain br", in: "a<br>b", want: "a\nb"},
		{name: "self-closing br", in: "a<br/>b", want: "a\nb"},
		{name: "spaced self-closing br", in: "a<br />b", want: "a\nb"},
		{name: "uppercase br", in: "a<BR>b", want: "a\nb"},
		{name: "no br", in: "ab", want: "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := brToNewline(tt.in); got != tt.want {
				t.Errorf("brToNewline(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeText tests whitespace and line normalization.
func TestNormalizeText(t *testing.T) {
	t.Parallel()

	t.Run("trims each line and drops blank lines", func(t *testing.T) {
		t.Parallel()

		got := normalizeText("  고인 홍길동  \n\n   \n발인 8월 3일\t\n")
		want := "고인 홍길동\n발인 8월 3일"
		if got != want {
			t.Errorf("normalizeText = %q, expected %q", got, want)
		}
	})

	t.Run("replaces non-breaking spaces", func(t *testing.T) {
		t.Parallel()

		got := normalizeText("고인\u00a0홍길동")
		if got != "고인 홍길동" {
			t.Errorf("normalizeText = %q, expected nbsp replaced", got)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		if got := normalizeText("  \n \n"); got != "" {
			t.Errorf("normalizeText = %q, expected empty", got)
		}
	})
}

// TestStripTags tests inline markup removal.
func TestStripTags(t *testing.T) {
	t.Parallel()

	got := stripTags("<p>고인 <b>홍길동</b></p>\n<span>발인 8월 3일</span>")
	want := "고인 홍길동\n발인 8월 3일"
	if got != want {
		t.Errorf("stripTags = %q, expected %q", got, want)
	}
}
