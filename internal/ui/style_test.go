package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		3:     "3",
		2.5:   "2.5",
		0:     "0",
		0.125: "0.125",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSlackAndMark(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	if got := Slack(2, 10); got != "2" {
		t.Errorf("expected plain 2 with colors off, got %q", got)
	}
	if got := CriticalMark(false); got != " " {
		t.Errorf("expected blank mark, got %q", got)
	}
	if got := CriticalMark(true); got != "⚡" {
		t.Errorf("expected ⚡, got %q", got)
	}
}

func TestPrintBanner(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), "C R I T P A T H") {
		t.Errorf("banner missing name: %q", buf.String())
	}
}
