package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in       string
		maxLen   int
		expected string
	}{
		{"Ko Aung's Shop", 50, "ko-aung-s-shop"},
		{"  My   Organization  ", 50, "my-organization"},
		{"UPPER lower 123", 50, "upper-lower-123"},
		{"---weird---", 50, "weird"},
		{"abcdefghij", 5, "abcde"},
		{"abc defgh", 4, "abc"},
		{"", 50, ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in, tc.maxLen); got != tc.expected {
			t.Fatalf("Slugify(%q, %d) = %q, expected %q", tc.in, tc.maxLen, got, tc.expected)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "Ko Aung", "fallback"); got != "Ko Aung" {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
	if got := FirstNonEmpty("", "   "); got != "" {
		t.Fatalf("FirstNonEmpty on blanks = %q", got)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"aung@example.com", "a.b+c@sub.domain.org"}
	invalid := []string{"", "plainaddress", "@nouser.com", "user@"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Fatalf("expected %q valid", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Fatalf("expected %q invalid", email)
		}
	}
}
