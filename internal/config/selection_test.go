package config

import (
	"strings"
	"testing"
)

func TestCheckSelection(t *testing.T) {
	charts := []Chart{{Name: "a"}, {Name: "b"}}

	if err := CheckSelection(charts, []string{"a"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckSelection(charts, nil); err != nil {
		t.Errorf("empty selection: %v", err)
	}

	err := CheckSelection(charts, []string{"a", "x", "y"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "x, y") {
		t.Errorf("error = %v, want both missing names", err)
	}
}

func TestSelectPreservesOrder(t *testing.T) {
	charts := []Chart{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got := Select(charts, []string{"c", "a"})
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("Select = %v", got)
	}
	if all := Select(charts, nil); len(all) != 3 {
		t.Errorf("empty selection should keep all, got %d", len(all))
	}
}
