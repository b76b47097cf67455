package utils

import "testing"

func TestCleanupString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  priya sharma ", "Priya Sharma"},
		{"dr. sharma", "Sharma"},
		{"Prof Rao", "Rao"},
		{"professor anita desai", "Anita Desai"},
		{"mrs. gupta.", "Gupta"},
		{"Dr", "Dr"},
		{"drew barry", "Drew Barry"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanupString(c.in); got != c.want {
			t.Errorf("CleanupString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
