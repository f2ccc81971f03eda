package naturalsort_test

import (
	"reflect"
	"testing"

	"folio/internal/naturalsort"
)

func TestStringsOrdersDigitRunsNumerically(t *testing.T) {
	values := []string{"a10", "a2", "a1"}
	naturalsort.Strings(values)
	want := []string{"a1", "a2", "a10"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("Strings() = %v, want %v", values, want)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"numeric beats lexical", "scan2.png", "scan10.png", -1},
		{"equal", "scan7.png", "scan7.png", 0},
		{"case insensitive", "Scan1.PNG", "scan1.png", 0},
		{"leading zeros equal value", "scan007", "scan7", 0},
		{"prefix first", "scan", "scan1", -1},
		{"mixed runs", "a1b2", "a1b10", -1},
		{"digits before letters", "12", "ab", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := naturalsort.Compare(tc.a, tc.b)
			if got != tc.want {
				t.Fatalf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestPathsSortsByBasename(t *testing.T) {
	paths := []string{"/z/scan10.png", "/a/scan9.png", "/m/scan1.png"}
	naturalsort.Paths(paths)
	want := []string{"/m/scan1.png", "/a/scan9.png", "/z/scan10.png"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("Paths() = %v, want %v", paths, want)
	}
}

func TestSearchPaths(t *testing.T) {
	paths := []string{"/s/scan1.png", "/s/scan3.png", "/s/scan10.png"}
	if got := naturalsort.SearchPaths(paths, "/s/scan2.png"); got != 1 {
		t.Fatalf("SearchPaths = %d, want 1", got)
	}
	if got := naturalsort.SearchPaths(paths, "/s/scan99.png"); got != 3 {
		t.Fatalf("SearchPaths = %d, want 3", got)
	}
}
