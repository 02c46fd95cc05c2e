package common

import "testing"

func TestHasAnyPrefix(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"https://example.com/a.csv", true},
		{"http://example.com/a.csv", true},
		{"data/TEMP2.csv", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := HasAnyPrefix(tc.s, "http://", "https://"); got != tc.want {
			t.Errorf("HasAnyPrefix(%q) = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestHeaderIndex(t *testing.T) {
	idx := HeaderIndex([]string{"\ufeffYear", " ISO3 ", "Temperature", "year"})
	want := map[string]int{"year": 0, "iso3": 1, "temperature": 2}
	if len(idx) != len(want) {
		t.Fatalf("HeaderIndex() = %v, want %v", idx, want)
	}
	for k, v := range want {
		if idx[k] != v {
			t.Errorf("idx[%q] = %d, want %d", k, idx[k], v)
		}
	}
}
