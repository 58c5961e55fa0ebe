package stage

import (
	"fmt"
	"log/slog"

	"github.com/lucasnoah/notebot/internal/pipeline"
)

// Publish is the terminal stage: it posts the run's outcome back to the
// originating thread. Posting is best-effort delivery of an
// already-decided outcome, so its own failures never change the run's
// result.
type Publish struct {
	notes  NotePoster
	logger *slog.Logger
}

// NewPublish creates the result publication stage.
func NewPublish(notes NotePoster, logger *slog.Logger) *Publish {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publish{notes: notes, logger: logger}
}

func (p *Publish) Name() string { return "publish" }

func (p *Publish) Run(c *pipeline.Context) pipeline.StageResult {
	var body string
	if errText := c.Meta[pipeline.MetaError]; errText != "" {
		body = fmt.Sprintf(errorFormat, errText)
	} else {
		content := noResultsPlaceholder
		if c.Agent != nil {
			content = c.Agent.Content
		}
		body = fmt.Sprintf(resultsFormat, content)
	}

	_, err := p.notes.PostNote(
		c.Payload.Project.ID,
		c.Meta[pipeline.MetaNoteableType],
		c.Payload.NoteableIID(),
		body,
	)
	if err != nil {
		p.logger.Warn("result post failed", slog.String("error", err.Error()))
	}
	return pipeline.StageResult{Context: c}
}
