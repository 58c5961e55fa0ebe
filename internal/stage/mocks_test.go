package stage

import (
	"io"
	"log/slog"

	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/gitlab"
	"github.com/lucasnoah/notebot/internal/workspace"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type postedNote struct {
	projectID    int
	noteableType string
	iid          int
	body         string
}

// mockPoster records posted notes and can fail on demand.
type mockPoster struct {
	posted []postedNote
	err    error
	nextID int
}

func (m *mockPoster) PostNote(projectID int, noteableType string, iid int, body string) (*gitlab.Note, error) {
	m.posted = append(m.posted, postedNote{projectID, noteableType, iid, body})
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	return &gitlab.Note{ID: 100 + m.nextID, Body: body}, nil
}

// mockDetector matches a single fixed trigger.
type mockDetector struct {
	name    string
	trigger string
}

func (m *mockDetector) Detect(text string) (string, string, bool) {
	if m.trigger == "" {
		return "", "", false
	}
	for i := 0; i+len(m.trigger) <= len(text); i++ {
		if text[i:i+len(m.trigger)] == m.trigger {
			return m.name, m.trigger, true
		}
	}
	return "", "", false
}

// mockWorkspaces returns a fixed path or error.
type mockWorkspaces struct {
	path string
	err  error
	opts []workspace.CreateOpts
}

func (m *mockWorkspaces) Create(opts workspace.CreateOpts) (string, error) {
	m.opts = append(m.opts, opts)
	return m.path, m.err
}

// mockIssues serves one canned issue with notes.
type mockIssues struct {
	issue    *gitlab.Issue
	notes    []gitlab.Note
	issueErr error
	notesErr error
	calls    int
}

func (m *mockIssues) GetIssue(projectID, iid int) (*gitlab.Issue, error) {
	m.calls++
	return m.issue, m.issueErr
}

func (m *mockIssues) ListIssueNotes(projectID, iid int) ([]gitlab.Note, error) {
	m.calls++
	return m.notes, m.notesErr
}

func mrNotePayload(note string) *event.Payload {
	return &event.Payload{
		ObjectKind: "note",
		Project: event.Project{
			ID:            17,
			GitHTTPURL:    "https://gitlab.example.com/acme/widgets.git",
			DefaultBranch: "main",
		},
		ObjectAttributes: event.ObjectAttributes{
			Note:         note,
			NoteableType: event.NoteableMergeRequest,
		},
		MergeRequest: &event.MergeRequest{
			IID:          42,
			SourceBranch: "feature/x",
			TargetBranch: "main",
			DiffRefs:     event.DiffRefs{HeadSHA: "abc123"},
		},
	}
}

func issueNotePayload(note string) *event.Payload {
	return &event.Payload{
		ObjectKind: "note",
		Project: event.Project{
			ID:         17,
			GitHTTPURL: "https://gitlab.example.com/acme/widgets.git",
		},
		ObjectAttributes: event.ObjectAttributes{
			Note:         note,
			NoteableType: event.NoteableIssue,
		},
		Issue: &event.Issue{IID: 7, Title: "Broken login"},
	}
}
