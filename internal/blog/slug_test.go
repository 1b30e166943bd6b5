package blog

import (
	"regexp"
	"strings"
	"testing"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		base  string
	}{
		{"Hello World", "hello-world"},
		{"  Leading & trailing!  ", "leading-trailing"},
		{"Go 1.23 — what's new?", "go-1-23-what-s-new"},
		{"UPPER case", "upper-case"},
	}
	for _, tc := range cases {
		got := Slugify(tc.title)
		if !strings.HasPrefix(got, tc.base+"-") {
			t.Errorf("Slugify(%q) = %q, want prefix %q", tc.title, got, tc.base+"-")
		}
		if !slugPattern.MatchString(got) {
			t.Errorf("Slugify(%q) = %q, not URL-safe", tc.title, got)
		}
	}
}

func TestSlugify_EmptyTitle(t *testing.T) {
	got := Slugify("!!!")
	if got == "" || !slugPattern.MatchString(got) {
		t.Errorf("Slugify(%q) = %q", "!!!", got)
	}
}

func TestSlugify_DistinctSuffixes(t *testing.T) {
	a := Slugify("Hello")
	b := Slugify("Hello")
	if a == b {
		t.Errorf("two slugs for the same title collided: %q", a)
	}
}
