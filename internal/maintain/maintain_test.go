package maintain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/testutil"
	"github.com/rowanhart/curator/internal/vault"
)

func testRunner(t *testing.T, model llm.Model) (*Runner, *vault.Vault) {
	t.Helper()
	v := testutil.TestVault(t)
	return NewRunner(v, model, testutil.Logger()), v
}

func note(fields, body string) string {
	return "---\n" + fields + "---\n\n" + body
}

func TestIsHyphenatedSlug(t *testing.T) {
	cases := []struct {
		stem string
		want bool
	}{
		{"fix-garden-fence", true},
		{"call-dentist", true},
		{"Fix Garden Fence", false},
		{"nohyphens", false},
		{"_system-file", false},
		{"Mixed-Case-Slug", false},
	}
	for _, c := range cases {
		if got := isHyphenatedSlug(c.stem); got != c.want {
			t.Errorf("isHyphenatedSlug(%q) = %v, want %v", c.stem, got, c.want)
		}
	}
}

func TestRenamePrefersHeaderTitle(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Actions/fix-garden-fence.md",
		note("title: Fix the Garden Fence\n", "Post sagging."))

	renames, err := r.RenameToTitleCase(false)
	if err != nil {
		t.Fatal(err)
	}
	if renames["fix-garden-fence"] != "Fix the Garden Fence" {
		t.Errorf("renames = %v", renames)
	}
	if _, err := os.Stat(filepath.Join(v.Root(), "Actions", "Fix the Garden Fence.md")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(v.Root(), "Actions", "fix-garden-fence.md")); !errors.Is(err, os.ErrNotExist) {
		t.Error("old file still present")
	}
}

func TestRenameFallsBackToSlugConversion(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Inbox/quick-thought.md", "no header here")

	renames, err := r.RenameToTitleCase(false)
	if err != nil {
		t.Fatal(err)
	}
	if renames["quick-thought"] != "Quick Thought" {
		t.Errorf("renames = %v", renames)
	}
}

func TestRenameStripsUnsafeTitleChars(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Reference/tmux-cheatsheet.md",
		note("title: tmux: copy/paste?\n", ""))

	renames, err := r.RenameToTitleCase(false)
	if err != nil {
		t.Fatal(err)
	}
	if renames["tmux-cheatsheet"] != "tmux copypaste" {
		t.Errorf("renames = %v", renames)
	}
}

func TestRenameDeduplicates(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Actions/Call Dentist.md", note("title: Call Dentist\n", ""))
	testutil.WriteNote(t, v, "Actions/call-dentist.md", note("title: Call Dentist\n", ""))

	renames, err := r.RenameToTitleCase(false)
	if err != nil {
		t.Fatal(err)
	}
	if renames["call-dentist"] != "Call Dentist 1" {
		t.Errorf("renames = %v", renames)
	}
	if _, err := os.Stat(filepath.Join(v.Root(), "Actions", "Call Dentist 1.md")); err != nil {
		t.Errorf("deduplicated file missing: %v", err)
	}
}

func TestRenameSkipsCleanStems(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Actions/Walk The Dog.md", note("title: Walk The Dog\n", ""))

	renames, err := r.RenameToTitleCase(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(renames) != 0 {
		t.Errorf("renames = %v, want none", renames)
	}
}

func TestRenameDryRunTouchesNothing(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Inbox/quick-thought.md", "body")

	renames, err := r.RenameToTitleCase(true)
	if err != nil {
		t.Fatal(err)
	}
	if renames["quick-thought"] != "Quick Thought" {
		t.Errorf("renames = %v", renames)
	}
	if _, err := os.Stat(filepath.Join(v.Root(), "Inbox", "quick-thought.md")); err != nil {
		t.Errorf("dry run moved the file: %v", err)
	}
}

func TestUpdateWikiLinks(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Projects/Garden.md", note("title: Garden\n",
		"Next: [[fix-garden-fence]] and [[fix-garden-fence|the fence]].\n"+
			"Photo: ![[fence-sketch]]\nUnrelated: [[other-note]]"))

	n, err := r.UpdateWikiLinks(map[string]string{
		"fix-garden-fence": "Fix the Garden Fence",
		"fence-sketch":     "Fence Sketch",
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("files modified = %d, want 1", n)
	}

	data, err := v.Read("Projects/Garden.md")
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"[[Fix the Garden Fence]]",
		"[[Fix the Garden Fence|the fence]]",
		"![[Fence Sketch]]",
		"[[other-note]]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "fix-garden-fence") {
		t.Errorf("stale link survived:\n%s", text)
	}
}

func TestUpdateWikiLinksNoRenames(t *testing.T) {
	r, _ := testRunner(t, nil)
	n, err := r.UpdateWikiLinks(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("files modified = %d, want 0", n)
	}
}

func TestFixHeaders(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Actions/Call Dentist.md", note(
		"title: Call Dentist\n"+
			"category: Inbox\n"+
			"priority: high\n"+
			"tags:\n  - phone calls\n  - health\n",
		"Book a checkup."))

	n, err := r.FixHeaders(false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("files modified = %d, want 1", n)
	}

	data, err := v.Read("Actions/Call Dentist.md")
	if err != nil {
		t.Fatal(err)
	}
	hdr, body, ok := vault.ParseHeader(string(data))
	if !ok {
		t.Fatal("rewritten note lost its header")
	}
	if got, _ := hdr.Get("category"); got != "Actions" {
		t.Errorf("category = %q", got)
	}
	if got, _ := hdr.Get("source"); got != "slack" {
		t.Errorf("source = %q", got)
	}
	if got, _ := hdr.Get("priority"); got != "2 - High" {
		t.Errorf("priority = %q", got)
	}
	if got, _ := hdr.Get("status"); got != "todo" {
		t.Errorf("status backfill = %q", got)
	}
	if got, _ := hdr.GetList("tags"); len(got) != 2 || got[0] != "phone-calls" {
		t.Errorf("tags = %v", got)
	}
	if body != "Book a checkup." {
		t.Errorf("body = %q", body)
	}
}

func TestFixHeadersCleanNoteUntouched(t *testing.T) {
	r, v := testRunner(t, nil)
	content := note(
		"title: Call Dentist\n"+
			"category: Actions\n"+
			"source: slack\n"+
			"action_item: call dentist\n"+
			"status: todo\n"+
			"priority: 3 - Medium\n"+
			"due_date: \n"+
			"project: \n",
		"Already clean.")
	testutil.WriteNote(t, v, "Actions/Call Dentist.md", content)
	before, _ := v.Read("Actions/Call Dentist.md")

	n, err := r.FixHeaders(false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("files modified = %d, want 0", n)
	}
	after, _ := v.Read("Actions/Call Dentist.md")
	if string(before) != string(after) {
		t.Error("clean note was rewritten")
	}
}

func TestFixHeadersSkipsHeaderless(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Inbox/scratch.md", "just some text, no header")

	n, err := r.FixHeaders(false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("files modified = %d, want 0", n)
	}
}

func TestReclassifyMovesNote(t *testing.T) {
	model := &testutil.FakeModel{Replies: []llm.Reply{
		{Text: `{"category": "Actions", "status": "todo"}`, Tokens: 30},
	}}
	r, v := testRunner(t, model)
	testutil.WriteNote(t, v, "Inbox/Call Plumber.md", note(
		"title: Call Plumber\ncategory: Inbox\n", "Kitchen tap drips."))

	n, err := r.ReclassifyNotes(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("files modified = %d, want 1", n)
	}

	data, err := v.Read("Actions/Call Plumber.md")
	if err != nil {
		t.Fatalf("note not moved: %v", err)
	}
	hdr, _, _ := vault.ParseHeader(string(data))
	if got, _ := hdr.Get("category"); got != "Actions" {
		t.Errorf("category = %q", got)
	}
	if got, _ := hdr.Get("status"); got != "todo" {
		t.Errorf("status = %q", got)
	}
}

func TestReclassifyNeverReplacesExistingNote(t *testing.T) {
	model := &testutil.FakeModel{Replies: []llm.Reply{{Text: `{"category": "Reference"}`}}}
	r, v := testRunner(t, model)
	testutil.WriteNote(t, v, "Reference/note.md", note(
		"title: Keep Me\ncategory: Reference\n", "irreplaceable body"))
	testutil.WriteNote(t, v, "Inbox/note.md", note(
		"title: Newcomer\ncategory: Inbox\n", "reclassified body"))

	if _, err := r.ReclassifyNotes(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	data, err := v.Read("Reference/note.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "irreplaceable body") {
		t.Errorf("existing note was replaced:\n%s", data)
	}
	if _, err := v.Read("Inbox/note.md"); err != nil {
		t.Errorf("source note gone despite skipped move: %v", err)
	}
}

func TestReclassifyEmptyObjectIsNoop(t *testing.T) {
	model := &testutil.FakeModel{Replies: []llm.Reply{{Text: "{}"}}}
	r, v := testRunner(t, model)
	testutil.WriteNote(t, v, "Inbox/Fine As Is.md", note("title: Fine As Is\n", "ok"))

	n, err := r.ReclassifyNotes(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("files modified = %d, want 0", n)
	}
	if len(model.Calls) != 1 {
		t.Errorf("model calls = %d, want 1", len(model.Calls))
	}
}

func TestReclassifyModelFailureSkipsFile(t *testing.T) {
	model := &testutil.FakeModel{Err: errors.New("quota exhausted")}
	r, v := testRunner(t, model)
	testutil.WriteNote(t, v, "Inbox/Note.md", note("title: Note\n", "body"))

	n, err := r.ReclassifyNotes(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("files modified = %d, want 0", n)
	}
}

func TestRunOrderLinksSeeRenames(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Actions/fix-garden-fence.md",
		note("title: Fix the Garden Fence\n", ""))
	testutil.WriteNote(t, v, "Projects/Garden.md",
		note("title: Garden\n", "See [[fix-garden-fence]]."))

	sum, err := r.Run(context.Background(), Options{Rename: true, UpdateLinks: true})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Renamed != 1 || sum.LinksUpdated != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	data, err := v.Read("Projects/Garden.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[[Fix the Garden Fence]]") {
		t.Errorf("link not rewritten: %s", data)
	}
}

func TestRunReclassifyWithoutModelSkips(t *testing.T) {
	r, v := testRunner(t, nil)
	testutil.WriteNote(t, v, "Inbox/Note.md", note("title: Note\n", "body"))

	sum, err := r.Run(context.Background(), Options{Reclassify: true})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reclassified != 0 {
		t.Errorf("summary = %+v", sum)
	}
}
