package event

import (
	"testing"
)

const mrNoteJSON = `{
	"object_kind": "note",
	"project": {
		"id": 17,
		"name": "widgets",
		"path_with_namespace": "acme/widgets",
		"git_http_url": "https://gitlab.example.com/acme/widgets.git",
		"default_branch": "main"
	},
	"object_attributes": {
		"note": "/oc_review please",
		"noteable_type": "MergeRequest",
		"noteable_id": 9001
	},
	"merge_request": {
		"iid": 42,
		"source_branch": "feature/x",
		"target_branch": "main",
		"diff_refs": {"base_sha": "def456", "head_sha": "abc123"}
	}
}`

func TestParse_MergeRequestNote(t *testing.T) {
	p, err := Parse([]byte(mrNoteJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsNote() {
		t.Error("expected IsNote=true")
	}
	if got := p.NoteBody(); got != "/oc_review please" {
		t.Errorf("expected note body, got %q", got)
	}
	if got := p.NoteableType(); got != NoteableMergeRequest {
		t.Errorf("expected noteable type MergeRequest, got %q", got)
	}
	if got := p.NoteableIID(); got != 42 {
		t.Errorf("expected iid 42 from merge_request, got %d", got)
	}
	if p.MergeRequest.DiffRefs.HeadSHA != "abc123" {
		t.Errorf("expected head sha abc123, got %q", p.MergeRequest.DiffRefs.HeadSHA)
	}
	if p.Project.GitHTTPURL != "https://gitlab.example.com/acme/widgets.git" {
		t.Errorf("unexpected clone url %q", p.Project.GitHTTPURL)
	}
}

func TestParse_IssueNote(t *testing.T) {
	raw := `{
		"object_kind": "note",
		"object_attributes": {"note": "/oc_ask why?", "noteable_type": "Issue", "noteable_id": 555},
		"issue": {"iid": 7, "title": "Broken login"}
	}`
	p, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.NoteableIID(); got != 7 {
		t.Errorf("expected iid 7 from issue, got %d", got)
	}
}

func TestNoteableIID_FallsBackToNoteableID(t *testing.T) {
	p := &Payload{ObjectAttributes: ObjectAttributes{NoteableType: "Snippet", NoteableID: 99}}
	if got := p.NoteableIID(); got != 99 {
		t.Errorf("expected fallback iid 99, got %d", got)
	}

	// Declared MR type but no merge_request object still falls back.
	p = &Payload{ObjectAttributes: ObjectAttributes{NoteableType: NoteableMergeRequest, NoteableID: 12}}
	if got := p.NoteableIID(); got != 12 {
		t.Errorf("expected fallback iid 12, got %d", got)
	}
}

func TestParse_NonNoteEvent(t *testing.T) {
	p, err := Parse([]byte(`{"object_kind": "push"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsNote() {
		t.Error("expected IsNote=false for push event")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParse_UnknownFieldsIgnored(t *testing.T) {
	raw := `{"object_kind": "note", "user": {"username": "alice"}, "repository": {"url": "x"}}`
	p, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsNote() {
		t.Error("expected IsNote=true")
	}
}
