package tui

import (
	"reflect"
	"testing"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("the quick brown fox", 10)
	want := []string{"the quick", "brown fox"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextCountsWideRunes(t *testing.T) {
	got := wrapText("日本語 日本", 6)
	want := []string{"日本語", "日本"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextFits(t *testing.T) {
	got := wrapText("short", 0)
	if len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
