package stage

import (
	"testing"

	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

func TestSnapshot_MergeRequest(t *testing.T) {
	s := NewSnapshot("main", discardLogger())
	c := pipeline.NewContext("run-1", mrNotePayload("/oc_review"))
	c.Meta[pipeline.MetaNoteableType] = event.NoteableMergeRequest

	res := s.Run(c)
	if !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if c.Snapshot == nil {
		t.Fatal("expected snapshot set")
	}
	if c.Snapshot.SHA != "abc123" {
		t.Errorf("expected head sha abc123, got %q", c.Snapshot.SHA)
	}
	if c.Snapshot.Branch != "" {
		t.Errorf("MR snapshot must not carry a branch, got %q", c.Snapshot.Branch)
	}
	if c.Snapshot.SourceBranch != "feature/x" || c.Snapshot.TargetBranch != "main" {
		t.Errorf("unexpected branches %+v", c.Snapshot)
	}
}

func TestSnapshot_Issue(t *testing.T) {
	s := NewSnapshot("develop", discardLogger())
	c := pipeline.NewContext("run-1", issueNotePayload("/oc_ask"))
	c.Meta[pipeline.MetaNoteableType] = event.NoteableIssue

	s.Run(c)
	if c.Snapshot.Branch != "develop" {
		t.Errorf("expected default branch develop, got %q", c.Snapshot.Branch)
	}
	if c.Snapshot.SHA != "" {
		t.Errorf("issue snapshot must not carry a sha, got %q", c.Snapshot.SHA)
	}
}

func TestSnapshot_DefaultBranchFallback(t *testing.T) {
	s := NewSnapshot("", discardLogger())
	c := pipeline.NewContext("run-1", issueNotePayload("/oc_ask"))
	c.Meta[pipeline.MetaNoteableType] = event.NoteableIssue

	s.Run(c)
	if c.Snapshot.Branch != "main" {
		t.Errorf("expected fallback to main, got %q", c.Snapshot.Branch)
	}
}

func TestSnapshot_UnsupportedTypeGetsEmptySnapshot(t *testing.T) {
	s := NewSnapshot("main", discardLogger())
	c := pipeline.NewContext("run-1", &event.Payload{ObjectKind: "note"})
	c.Meta[pipeline.MetaNoteableType] = "Snippet"

	res := s.Run(c)
	if !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if c.Snapshot == nil {
		t.Fatal("expected a defined empty snapshot")
	}
	if c.Snapshot.SHA != "" || c.Snapshot.Branch != "" {
		t.Errorf("expected empty snapshot, got %+v", c.Snapshot)
	}
}

func TestSnapshot_MergeRequestMissingObject(t *testing.T) {
	s := NewSnapshot("main", discardLogger())
	p := mrNotePayload("/oc_review")
	p.MergeRequest = nil
	c := pipeline.NewContext("run-1", p)
	c.Meta[pipeline.MetaNoteableType] = event.NoteableMergeRequest

	res := s.Run(c)
	if !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if c.Snapshot.SHA != "" {
		t.Errorf("expected empty sha without merge_request object, got %q", c.Snapshot.SHA)
	}
}
