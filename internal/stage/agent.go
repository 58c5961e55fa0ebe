package stage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasnoah/notebot/internal/agent"
	"github.com/lucasnoah/notebot/internal/pipeline"
	"github.com/lucasnoah/notebot/internal/prompt"
)

// Workspace-relative files persisted for auditability.
const (
	agentEventsFilename = "opencode_events.jsonl"
	agentReplyFilename  = "opencode_reply.md"
)

// AgentOpts configures an agent invocation stage.
type AgentOpts struct {
	Template    string // prompt template name, e.g. "review.md"
	Model       string
	Agent       string // agent profile name passed to the runner
	TemplateDir string // optional prompt override directory
}

// Agent builds the task prompt and invokes the reasoning agent inside
// the workspace.
type Agent struct {
	runner agent.Runner
	opts   AgentOpts
	logger *slog.Logger
}

// NewAgent creates the agent invocation stage.
func NewAgent(runner agent.Runner, opts AgentOpts, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{runner: runner, opts: opts, logger: logger}
}

func (a *Agent) Name() string { return "agent" }

func (a *Agent) Run(c *pipeline.Context) pipeline.StageResult {
	if c.Workspace == "" {
		return pipeline.StageResult{Context: c, Stop: true, Err: fmt.Errorf("no workspace available for agent")}
	}

	rendered, err := a.buildPrompt(c)
	if err != nil {
		return pipeline.StageResult{Context: c, Stop: true, Err: err}
	}

	out, err := a.runner.Run(agent.RunOpts{
		Workdir: c.Workspace,
		Model:   a.opts.Model,
		Agent:   a.opts.Agent,
		Prompt:  rendered,
	})
	if err != nil {
		return pipeline.StageResult{Context: c, Stop: true, Err: err}
	}
	if out.ExitCode != 0 {
		return pipeline.StageResult{Context: c, Stop: true, Err: fmt.Errorf("agent run failed: %s", out.Diagnostic())}
	}

	eventsPath := filepath.Join(c.Workspace, agentEventsFilename)
	if err := os.WriteFile(eventsPath, []byte(out.Stdout), 0o644); err != nil {
		return pipeline.StageResult{Context: c, Stop: true, Err: fmt.Errorf("write event stream: %w", err)}
	}

	content := agent.ExtractText(out.Stdout)
	if content == "" {
		content = noResponsePlaceholder
	}

	replyPath := filepath.Join(c.Workspace, agentReplyFilename)
	if err := os.WriteFile(replyPath, []byte(content+"\n"), 0o644); err != nil {
		return pipeline.StageResult{Context: c, Stop: true, Err: fmt.Errorf("write reply: %w", err)}
	}

	c.Agent = &pipeline.AgentResult{
		Content: content,
		Format:  "markdown",
		Metadata: map[string]string{
			"agent":       a.opts.Agent,
			"model":       a.opts.Model,
			"events_path": eventsPath,
			"reply_path":  replyPath,
		},
	}

	a.logger.Info("agent run completed", slog.Int("reply_bytes", len(content)))
	return pipeline.StageResult{Context: c}
}

// buildPrompt renders the stage's template from the triggering comment,
// with the trigger phrase stripped, plus a reference to the issue
// context document when one was fetched.
func (a *Agent) buildPrompt(c *pipeline.Context) (string, error) {
	question := strings.TrimSpace(strings.Replace(
		c.Meta[pipeline.MetaNoteBody], c.Meta[pipeline.MetaTrigger], "", 1))
	if question == "" {
		question = "No additional question provided."
	}

	vars := prompt.Vars{"question": question}
	if ctxPath := c.Meta[pipeline.MetaIssueContextPath]; ctxPath != "" {
		rel, err := filepath.Rel(c.Workspace, ctxPath)
		if err != nil {
			rel = ctxPath
		}
		vars["issue_context_file"] = rel
	}

	tmpl, err := prompt.Load(a.opts.Template, a.opts.TemplateDir)
	if err != nil {
		return "", err
	}
	return prompt.Render(tmpl, vars)
}
