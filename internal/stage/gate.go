package stage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lucasnoah/notebot/internal/gitlab"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

// Detector resolves a raw comment body to a registered command.
// Implemented by command.Registry.
type Detector interface {
	Detect(text string) (name string, trigger string, ok bool)
}

// NotePoster posts comments to threads. Implemented by gitlab.Client.
type NotePoster interface {
	PostNote(projectID int, noteableType string, iid int, body string) (*gitlab.Note, error)
}

// Gate is the first stage of every pipeline. It filters out non-note
// events and our own notes, resolves the trigger command, and posts the
// acknowledgement comment.
type Gate struct {
	detector Detector
	notes    NotePoster
	logger   *slog.Logger
}

// NewGate creates the trigger / self-echo gate stage.
func NewGate(detector Detector, notes NotePoster, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{detector: detector, notes: notes, logger: logger}
}

func (g *Gate) Name() string { return "gate" }

func (g *Gate) Run(c *pipeline.Context) pipeline.StageResult {
	if !c.Payload.IsNote() {
		return pipeline.StageResult{Context: c, Stop: true}
	}

	body := c.Payload.NoteBody()
	if strings.HasPrefix(body, SelfEchoPrefix) {
		g.logger.Info("skipping note posted by ourselves")
		return pipeline.StageResult{Context: c, Stop: true}
	}

	name, trigger, ok := g.detector.Detect(body)
	if !ok {
		g.logger.Info("no command detected in note")
		return pipeline.StageResult{Context: c, Stop: true}
	}

	c.Command = name
	c.Meta[pipeline.MetaNoteableType] = c.Payload.NoteableType()
	c.Meta[pipeline.MetaNoteBody] = body
	c.Meta[pipeline.MetaTrigger] = trigger

	// Acknowledgement is best effort; a missing note id must not break
	// later stages.
	note, err := g.notes.PostNote(
		c.Payload.Project.ID,
		c.Payload.NoteableType(),
		c.Payload.NoteableIID(),
		fmt.Sprintf(ackFormat, trigger),
	)
	if err != nil {
		g.logger.Warn("acknowledgement post failed", slog.String("error", err.Error()))
	} else if note != nil {
		c.AckNoteID = note.ID
	}

	return pipeline.StageResult{Context: c}
}
