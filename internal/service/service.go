package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lucasnoah/notebot/internal/command"
	"github.com/lucasnoah/notebot/internal/db"
	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

// Service glues the registry and the pipeline engine behind the single
// entry point the ingress layer calls.
type Service struct {
	registry *command.Registry
	db       *db.DB // nil disables run history
	logger   *slog.Logger
}

// New creates a Service. database may be nil.
func New(registry *command.Registry, database *db.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: registry, db: database, logger: logger}
}

// Outcome reports what one event led to.
type Outcome struct {
	Ran     bool   `json:"ran"`
	Command string `json:"command,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Handle processes one raw webhook document: detect the applicable
// command and, when one matches, run its pipeline to completion. Runs
// for distinct events are independent; callers may invoke Handle
// concurrently.
func (s *Service) Handle(raw []byte) (Outcome, error) {
	payload, err := event.Parse(raw)
	if err != nil {
		return Outcome{}, err
	}

	if s.db != nil {
		if err := s.db.LogWebhookEvent(payload.ObjectKind, payload.Project.PathWithNamespace, payload.NoteableType()); err != nil {
			s.logger.Warn("record webhook event failed", slog.String("error", err.Error()))
		}
	}

	if !payload.IsNote() {
		return Outcome{Success: true}, nil
	}
	name, _, ok := s.registry.Detect(payload.NoteBody())
	if !ok {
		return Outcome{Success: true}, nil
	}

	pl, ok := s.registry.Resolve(name)
	if !ok {
		return Outcome{Success: true}, nil
	}

	runID := uuid.NewString()
	c := pipeline.NewContext(runID, payload)
	if s.db != nil {
		pl.OnStage = func(stageName string, d time.Duration, stageErr error) {
			sr := db.StageResult{RunID: runID, Stage: stageName, Success: stageErr == nil, DurationMs: d.Milliseconds()}
			if stageErr != nil {
				sr.Error = stageErr.Error()
			}
			if err := s.db.LogStageResult(sr); err != nil {
				s.logger.Warn("record stage result failed", slog.String("error", err.Error()))
			}
		}
	}

	start := time.Now()
	res := pl.Execute(c)

	outcome := Outcome{Ran: true, Command: name, Success: res.Success()}
	if res.Err != nil {
		outcome.Error = res.Err.Error()
	}

	if s.db != nil {
		run := db.Run{
			RunID:        runID,
			Command:      name,
			ProjectID:    payload.Project.ID,
			NoteableType: payload.NoteableType(),
			NoteableIID:  payload.NoteableIID(),
			Success:      outcome.Success,
			Error:        outcome.Error,
			DurationMs:   time.Since(start).Milliseconds(),
		}
		if err := s.db.LogRun(run); err != nil {
			s.logger.Warn("record run failed", slog.String("error", err.Error()))
		}
	}

	return outcome, nil
}
