package dictionary

import (
	"strings"
	"testing"
)

func TestNewSkipsBlankLinesAndTrims(t *testing.T) {
	r := strings.NewReader("cat\n\n  dog  \nbird\n")
	d, err := New(r)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if len(d) != 3 {
		t.Errorf("wanted 3 words, got %v", len(d))
	}
}

func TestNewRequiresReader(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("wanted error for nil reader")
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	d, err := New(strings.NewReader("hi\nthere\n"))
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	cases := []struct {
		word string
		want bool
	}{
		{"HI", true},
		{"hi", true},
		{"Hi", true},
		{"THERE", true},
		{"bye", false},
	}
	for _, c := range cases {
		if got := d.Contains(c.word); got != c.want {
			t.Errorf("Contains(%q) = %v, want %v", c.word, got, c.want)
		}
	}
}
