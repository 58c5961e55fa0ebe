package stage

import (
	"log/slog"

	"github.com/lucasnoah/notebot/internal/pipeline"
	"github.com/lucasnoah/notebot/internal/workspace"
)

// WorkspaceCreator materializes a checkout. Implemented by
// workspace.Manager.
type WorkspaceCreator interface {
	Create(opts workspace.CreateOpts) (string, error)
}

// Workspace clones the repository at the resolved revision into a
// disposable per-run directory.
type Workspace struct {
	workspaces WorkspaceCreator
	logger     *slog.Logger
}

// NewWorkspace creates the workspace materializer stage.
func NewWorkspace(workspaces WorkspaceCreator, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{workspaces: workspaces, logger: logger}
}

func (w *Workspace) Name() string { return "workspace" }

func (w *Workspace) Run(c *pipeline.Context) pipeline.StageResult {
	opts := workspace.CreateOpts{CloneURL: c.Payload.Project.GitHTTPURL}
	if c.Snapshot != nil {
		opts.SHA = c.Snapshot.SHA
		opts.Branch = c.Snapshot.Branch
	}

	// Record the path even on failure so the pipeline's unconditional
	// cleanup removes partial clones.
	path, err := w.workspaces.Create(opts)
	if path != "" {
		c.Workspace = path
	}
	if err != nil {
		return pipeline.StageResult{Context: c, Stop: true, Err: err}
	}

	w.logger.Info("materialized workspace", slog.String("path", path))
	return pipeline.StageResult{Context: c}
}
