package vault

import (
	"strings"
	"testing"
)

const sampleNote = `---
title: Fix Garden Fence
category: Actions
status: todo
priority: 3 - Medium
due_date: 2026-09-05
tags:
  - garden
  - home-repair
project: ""
---

The back fence panel blew over in the storm.
`

func TestParseHeaderFields(t *testing.T) {
	hdr, body, ok := ParseHeader(sampleNote)
	if !ok {
		t.Fatal("ParseHeader failed on valid note")
	}
	if got, _ := hdr.Get("title"); got != "Fix Garden Fence" {
		t.Errorf("title = %q, want %q", got, "Fix Garden Fence")
	}
	if got, _ := hdr.Get("priority"); got != "3 - Medium" {
		t.Errorf("priority = %q, want %q", got, "3 - Medium")
	}
	tags, ok := hdr.GetList("tags")
	if !ok || len(tags) != 2 || tags[0] != "garden" || tags[1] != "home-repair" {
		t.Errorf("tags = %v, want [garden home-repair]", tags)
	}
	// Quoted empty string unquotes to empty scalar.
	if got, ok := hdr.Get("project"); !ok || got != "" {
		t.Errorf("project = %q (present=%v), want empty present", got, ok)
	}
	if !strings.HasPrefix(body, "The back fence panel") {
		t.Errorf("body = %q", body)
	}
}

func TestParseHeaderOrderPreserved(t *testing.T) {
	hdr, _, ok := ParseHeader(sampleNote)
	if !ok {
		t.Fatal("ParseHeader failed")
	}
	want := []string{"title", "category", "status", "priority", "due_date", "tags", "project"}
	fields := hdr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("field count = %d, want %d", len(fields), len(want))
	}
	for i, f := range fields {
		if f.Key != want[i] {
			t.Errorf("field[%d] = %q, want %q", i, f.Key, want[i])
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	hdr, body, ok := ParseHeader(sampleNote)
	if !ok {
		t.Fatal("ParseHeader failed")
	}
	out := Serialize(hdr, body)
	hdr2, body2, ok := ParseHeader(out)
	if !ok {
		t.Fatal("re-parse failed")
	}
	if body2 != body {
		t.Errorf("body changed: %q vs %q", body2, body)
	}
	f1, f2 := hdr.Fields(), hdr2.Fields()
	if len(f1) != len(f2) {
		t.Fatalf("field count changed: %d vs %d", len(f1), len(f2))
	}
	for i := range f1 {
		if f1[i].Key != f2[i].Key || f1[i].String() != f2[i].String() {
			t.Errorf("field %d changed: %+v vs %+v", i, f1[i], f2[i])
		}
	}
}

func TestParseHeaderRejectsMissingSentinel(t *testing.T) {
	if _, _, ok := ParseHeader("just some text\nno header here\n"); ok {
		t.Error("expected failure without leading sentinel")
	}
	if _, _, ok := ParseHeader("---\ntitle: Unterminated\n"); ok {
		t.Error("expected failure on unterminated header")
	}
}

func TestParseHeaderEmptyListFixup(t *testing.T) {
	note := "---\ntags:\nstatus: todo\n---\n\nbody\n"
	hdr, _, ok := ParseHeader(note)
	if !ok {
		t.Fatal("ParseHeader failed")
	}
	// "tags:" with no items is an empty scalar, not a list.
	for _, f := range hdr.Fields() {
		if f.Key == "tags" && f.IsList {
			t.Error("empty key should not stay a list")
		}
	}
	if got, ok := hdr.Get("tags"); !ok || got != "" {
		t.Errorf("tags = %q, want empty scalar", got)
	}
}

func TestHeaderSetAndDelete(t *testing.T) {
	hdr, _, _ := ParseHeader(sampleNote)
	hdr.Set("status", "done")
	if got, _ := hdr.Get("status"); got != "done" {
		t.Errorf("status = %q, want done", got)
	}
	// Replacement does not change position.
	if hdr.Fields()[2].Key != "status" {
		t.Errorf("status moved to position %d", 2)
	}

	hdr.Set("completed_at", "2026-09-01")
	last := hdr.Fields()[hdr.Len()-1]
	if last.Key != "completed_at" {
		t.Errorf("new field appended at %q, want completed_at last", last.Key)
	}

	if !hdr.Delete("due_date") {
		t.Error("Delete returned false for existing key")
	}
	if _, ok := hdr.Get("due_date"); ok {
		t.Error("due_date still present after delete")
	}
	if hdr.Delete("nonexistent") {
		t.Error("Delete returned true for missing key")
	}
}

func TestSerializeListForm(t *testing.T) {
	hdr := &Header{}
	hdr.Set("title", "People Notes")
	hdr.SetList("people", []string{"Ana", "Ben"})
	out := Serialize(hdr, "body\n")
	want := "---\ntitle: People Notes\npeople:\n  - Ana\n  - Ben\n---\n\nbody\n"
	if out != want {
		t.Errorf("serialized form:\n%q\nwant:\n%q", out, want)
	}
}
