package glevel

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitLines(t *testing.T) {
	lines, err := splitLines([]byte("a,b\r\n\nc|d=e\rf\n\n  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, expected 3", len(lines))
	}
	for i, want := range []string{"a,b", "", "c|d=e\rf"} {
		if lines[i].num != i+1 || lines[i].text() != want {
			t.Errorf("line %d: %d %q; expected %q", i, lines[i].num, lines[i].text(), want)
		}
	}
}

func TestLineSplitMatchesStrings(t *testing.T) {
	for _, text := range []string{
		"",
		",",
		"a",
		"a,b,,c,",
		"x=1,y=2=3|z",
		"|a|b|",
	} {
		lines, err := splitLines([]byte(text + "\nend"))
		if err != nil {
			t.Fatal(err)
		}
		for _, sep := range []byte{',', '|', '='} {
			want := strings.Split(text, string(sep))
			fields := lines[0].split(sep)
			got := make([]string, len(fields))
			for i, f := range fields {
				if f.index != i {
					t.Errorf("%q: field %d has index %d", text, i, f.index)
				}
				got[i] = f.text
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("%q split on %q = %q; expected %q", text, sep, got, want)
			}
		}
	}
}
