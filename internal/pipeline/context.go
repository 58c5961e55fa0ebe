package pipeline

import "github.com/lucasnoah/notebot/internal/event"

// Snapshot identifies what code subsequent stages should check out.
// Exactly one of SHA/Branch is authoritative per run; both may be empty
// for unsupported thread types.
type Snapshot struct {
	SHA          string
	Branch       string
	SourceBranch string
	TargetBranch string
}

// AgentResult is the structured output of an agent invocation. Set at
// most once per run.
type AgentResult struct {
	Content  string
	Format   string
	Metadata map[string]string
}

// Context is the mutable record threaded through all stages of a single
// run. It is exclusively owned by the Pipeline run that created it and
// never aliased across concurrent runs.
type Context struct {
	// RunID identifies this run in logs and run history.
	RunID string

	// Payload is the original webhook event, read-only after creation.
	Payload *event.Payload

	// Command is the resolved command name, set by the gate stage.
	Command string

	// Snapshot is the resolved code revision, set by the snapshot stage.
	Snapshot *Snapshot

	// Workspace is the filesystem checkout owned exclusively by this run.
	Workspace string

	// Agent holds the agent's output once the agent stage has run.
	Agent *AgentResult

	// AckNoteID is the id of the acknowledgement note posted for this
	// run, zero when the ack post failed or was skipped.
	AckNoteID int

	// Meta is the append-only side-channel between non-adjacent stages.
	Meta map[string]string
}

// NewContext creates a Context for one triggering event.
func NewContext(runID string, payload *event.Payload) *Context {
	return &Context{
		RunID:   runID,
		Payload: payload,
		Meta:    make(map[string]string),
	}
}
