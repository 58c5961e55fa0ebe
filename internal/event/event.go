package event

import (
	"encoding/json"
	"fmt"
)

// Noteable type values as GitLab sends them.
const (
	NoteableMergeRequest = "MergeRequest"
	NoteableIssue        = "Issue"
)

// Payload is a GitLab webhook event. Only the fields the pipeline reads
// are modelled; the rest of the document is ignored.
type Payload struct {
	ObjectKind       string           `json:"object_kind"`
	Project          Project          `json:"project"`
	ObjectAttributes ObjectAttributes `json:"object_attributes"`
	MergeRequest     *MergeRequest    `json:"merge_request,omitempty"`
	Issue            *Issue           `json:"issue,omitempty"`
}

// Project describes the repository the event belongs to.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	GitHTTPURL        string `json:"git_http_url"`
	DefaultBranch     string `json:"default_branch"`
}

// ObjectAttributes carries the note body and thread linkage for note
// events, and the MR attributes for merge_request events.
type ObjectAttributes struct {
	Note         string `json:"note"`
	NoteableType string `json:"noteable_type"`
	NoteableID   int    `json:"noteable_id"`
	Action       string `json:"action"`
	IID          int    `json:"iid"`
}

// MergeRequest is the thread item for notes on merge requests.
type MergeRequest struct {
	IID          int      `json:"iid"`
	SourceBranch string   `json:"source_branch"`
	TargetBranch string   `json:"target_branch"`
	DiffRefs     DiffRefs `json:"diff_refs"`
}

// DiffRefs identifies the current diff of a merge request.
type DiffRefs struct {
	BaseSHA string `json:"base_sha"`
	HeadSHA string `json:"head_sha"`
}

// Issue is the thread item for notes on issues.
type Issue struct {
	IID   int    `json:"iid"`
	Title string `json:"title"`
}

// Parse decodes a raw webhook document.
func Parse(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}
	return &p, nil
}

// IsNote reports whether this is a comment-on-a-thread event.
func (p *Payload) IsNote() bool {
	return p.ObjectKind == "note"
}

// NoteBody returns the comment text for note events.
func (p *Payload) NoteBody() string {
	return p.ObjectAttributes.Note
}

// NoteableType returns the thread type the note belongs to.
func (p *Payload) NoteableType() string {
	return p.ObjectAttributes.NoteableType
}

// NoteableIID returns the iid of the thread item the note belongs to,
// falling back to the raw noteable id for unsupported thread types.
func (p *Payload) NoteableIID() int {
	switch p.ObjectAttributes.NoteableType {
	case NoteableMergeRequest:
		if p.MergeRequest != nil {
			return p.MergeRequest.IID
		}
	case NoteableIssue:
		if p.Issue != nil {
			return p.Issue.IID
		}
	}
	return p.ObjectAttributes.NoteableID
}
