package stage

import (
	"log/slog"

	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

// Snapshot resolves which code revision subsequent stages check out,
// based on the thread type recorded by the gate.
type Snapshot struct {
	defaultBranch string
	logger        *slog.Logger
}

// NewSnapshot creates the revision resolver stage. defaultBranch is the
// branch used for issue threads, which carry no inherent revision.
func NewSnapshot(defaultBranch string, logger *slog.Logger) *Snapshot {
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshot{defaultBranch: defaultBranch, logger: logger}
}

func (s *Snapshot) Name() string { return "snapshot" }

func (s *Snapshot) Run(c *pipeline.Context) pipeline.StageResult {
	// Unsupported thread types still get a defined, empty snapshot so
	// downstream stages have a uniform contract.
	snap := &pipeline.Snapshot{}

	switch c.Meta[pipeline.MetaNoteableType] {
	case event.NoteableMergeRequest:
		if mr := c.Payload.MergeRequest; mr != nil {
			snap.SHA = mr.DiffRefs.HeadSHA
			snap.SourceBranch = mr.SourceBranch
			snap.TargetBranch = mr.TargetBranch
		}
	case event.NoteableIssue:
		snap.Branch = s.defaultBranch
	}

	c.Snapshot = snap
	s.logger.Info("resolved code snapshot",
		slog.String("sha", snap.SHA),
		slog.String("branch", snap.Branch))
	return pipeline.StageResult{Context: c}
}
