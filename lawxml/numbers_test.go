package lawxml

import "testing"

func TestArticleLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"1", "第1条"},
		{"38", "第38条"},
		{"38_3", "第38条の3"},
		{"38_3_2", "第38条の3の2"},
	}
	for _, tc := range tests {
		if got := ArticleLabel(tc.in); got != tc.want {
			t.Errorf("ArticleLabel(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestItemLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"1", "第1号"},
		{"3_2", "第3の2号"},
	}
	for _, tc := range tests {
		if got := ItemLabel(tc.in); got != tc.want {
			t.Errorf("ItemLabel(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParagraphLabel(t *testing.T) {
	tests := []struct {
		num   string
		total int
		want  string
	}{
		{"1", 1, ""},
		{"1", 2, "第1項"},
		{"2", 3, "第2項"},
		{"", 3, ""},
	}
	for _, tc := range tests {
		if got := ParagraphLabel(tc.num, tc.total); got != tc.want {
			t.Errorf("ParagraphLabel(%q, %d): got %q, want %q", tc.num, tc.total, got, tc.want)
		}
	}
}
