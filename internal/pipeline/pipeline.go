package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Metadata keys used to pass information between non-adjacent stages.
const (
	MetaError            = "pipeline_error"
	MetaNoteableType     = "noteable_type"
	MetaNoteBody         = "note_body"
	MetaTrigger          = "trigger_phrase"
	MetaIssueContextPath = "issue_context_path"
)

// Stage is a single unit of work operating on a Context.
type Stage interface {
	Name() string
	Run(c *Context) StageResult
}

// StageResult is returned by each stage. A nil Err with Stop set is a
// deliberate early exit, not a failure.
type StageResult struct {
	Context *Context
	Stop    bool
	Err     error
}

// Success reports whether the stage completed without error.
func (r StageResult) Success() bool {
	return r.Err == nil
}

// Pipeline executes stages sequentially against one Context. The final
// stage runs after normal completion and after a stage error (so it can
// report the failure), but not after a deliberate early stop.
type Pipeline struct {
	name   string
	stages []Stage
	final  Stage
	logger *slog.Logger

	// removeDir is swappable for tests; defaults to os.RemoveAll.
	removeDir func(path string) error

	// OnStage, when set, observes every completed stage.
	OnStage func(stage string, d time.Duration, err error)
}

// New creates a Pipeline. final may be nil for pipelines with no
// terminal publication step.
func New(name string, stages []Stage, final Stage, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		name:      name,
		stages:    stages,
		final:     final,
		logger:    logger,
		removeDir: os.RemoveAll,
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// SetRemoveDir overrides workspace removal (for testing).
func (p *Pipeline) SetRemoveDir(fn func(path string) error) {
	p.removeDir = fn
}

// Execute runs all stages until completion or stop. The workspace
// directory, if one was created, is removed exactly once on every exit
// path.
func (p *Pipeline) Execute(c *Context) StageResult {
	p.logger.Info("pipeline started", slog.String("pipeline", p.name), slog.String("run_id", c.RunID))

	defer func() {
		if c.Workspace == "" {
			return
		}
		if err := p.removeDir(c.Workspace); err != nil {
			p.logger.Warn("workspace cleanup failed",
				slog.String("pipeline", p.name),
				slog.String("workspace", c.Workspace),
				slog.String("error", err.Error()))
		}
		c.Workspace = ""
	}()

	for _, s := range p.stages {
		res := p.runStage(s, c)
		if res.Context != nil {
			c = res.Context
		}

		if res.Stop {
			if res.Err != nil {
				c.Meta[MetaError] = res.Err.Error()
				p.logger.Error("pipeline stopped with error",
					slog.String("pipeline", p.name),
					slog.String("stage", s.Name()),
					slog.String("error", res.Err.Error()))
				p.runFinal(c)
				return res
			}
			p.logger.Info("pipeline stopped early",
				slog.String("pipeline", p.name),
				slog.String("stage", s.Name()))
			return StageResult{Context: c, Stop: true}
		}
	}

	p.runFinal(c)
	p.logger.Info("pipeline completed", slog.String("pipeline", p.name))
	return StageResult{Context: c}
}

// runFinal executes the terminal stage. Its failures are logged but do
// not change the run's outcome: publication is best-effort delivery of
// an already-decided result.
func (p *Pipeline) runFinal(c *Context) {
	if p.final == nil {
		return
	}
	res := p.runStage(p.final, c)
	if res.Err != nil {
		p.logger.Warn("final stage failed",
			slog.String("pipeline", p.name),
			slog.String("stage", p.final.Name()),
			slog.String("error", res.Err.Error()))
	}
}

// runStage wraps a stage's core logic: entry/exit logging, panic
// recovery, and normalization of the Stop/Err invariant. Stages never
// need their own top-level trap.
func (p *Pipeline) runStage(s Stage, c *Context) (res StageResult) {
	start := time.Now()
	p.logger.Info("stage started", slog.String("pipeline", p.name), slog.String("stage", s.Name()))

	defer func() {
		if r := recover(); r != nil {
			res = StageResult{Context: c, Stop: true, Err: fmt.Errorf("stage %s panicked: %v", s.Name(), r)}
		}
		if res.Err != nil {
			res.Stop = true
		}
		d := time.Since(start)
		if p.OnStage != nil {
			p.OnStage(s.Name(), d, res.Err)
		}
		if res.Err != nil {
			p.logger.Error("stage failed",
				slog.String("pipeline", p.name),
				slog.String("stage", s.Name()),
				slog.Duration("duration", d),
				slog.String("error", res.Err.Error()))
		} else {
			p.logger.Info("stage completed",
				slog.String("pipeline", p.name),
				slog.String("stage", s.Name()),
				slog.Duration("duration", d))
		}
	}()

	return s.Run(c)
}
