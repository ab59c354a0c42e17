package vault

import (
	"strings"
	"testing"
)

func TestDirectivesEmpty(t *testing.T) {
	v := testVault(t)
	if got := v.Directives(); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestAddAndListDirectives(t *testing.T) {
	v := testVault(t)

	if _, err := v.AddDirective("always tag recipes with #cooking"); err != nil {
		t.Fatal(err)
	}
	list, err := v.AddDirective("file work notes under Projects")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %v", list)
	}
	if list[0] != "always tag recipes with #cooking" {
		t.Errorf("order not preserved: %v", list)
	}

	// The backing file is a plain bulleted list.
	data, err := v.Read(SystemDir + "/" + DirectivesFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Directives\n\n- ") {
		t.Errorf("file form:\n%s", data)
	}
}

func TestRemoveDirective(t *testing.T) {
	v := testVault(t)
	_, _ = v.AddDirective("first")
	_, _ = v.AddDirective("second")

	removed, list, err := v.RemoveDirective(1)
	if err != nil {
		t.Fatal(err)
	}
	if removed != "first" {
		t.Errorf("removed = %q", removed)
	}
	if len(list) != 1 || list[0] != "second" {
		t.Errorf("list = %v", list)
	}
}

func TestRemoveDirectiveOutOfRange(t *testing.T) {
	v := testVault(t)
	_, _ = v.AddDirective("only one")

	for _, idx := range []int{0, 2, -1} {
		removed, list, err := v.RemoveDirective(idx)
		if err != nil {
			t.Fatal(err)
		}
		if removed != "" {
			t.Errorf("RemoveDirective(%d) removed %q", idx, removed)
		}
		if len(list) != 1 {
			t.Errorf("RemoveDirective(%d) mutated the list: %v", idx, list)
		}
	}
}
