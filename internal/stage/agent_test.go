package stage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasnoah/notebot/internal/agent"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

// mockRunner replays a canned agent run.
type mockRunner struct {
	out  *agent.RunOutput
	err  error
	opts []agent.RunOpts
}

func (m *mockRunner) Run(opts agent.RunOpts) (*agent.RunOutput, error) {
	m.opts = append(m.opts, opts)
	return m.out, m.err
}

func agentContext(t *testing.T, note, trigger string) *pipeline.Context {
	t.Helper()
	c := pipeline.NewContext("run-1", mrNotePayload(note))
	c.Meta[pipeline.MetaNoteBody] = note
	c.Meta[pipeline.MetaTrigger] = trigger
	c.Workspace = t.TempDir()
	return c
}

func TestAgentStage_Success(t *testing.T) {
	runner := &mockRunner{out: &agent.RunOutput{
		Stdout: `{"type":"text","part":{"text":"Looks good overall."}}`,
	}}
	a := NewAgent(runner, AgentOpts{Template: "review.md", Model: "minimax/MiniMax-M2.1", Agent: "Build"}, discardLogger())

	c := agentContext(t, "/oc_review focus on auth", "/oc_review")
	res := a.Run(c)
	if !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if len(runner.opts) != 1 {
		t.Fatalf("expected one run, got %d", len(runner.opts))
	}
	opts := runner.opts[0]
	if opts.Workdir != c.Workspace {
		t.Errorf("agent must run inside the workspace, got %q", opts.Workdir)
	}
	if opts.Model != "minimax/MiniMax-M2.1" || opts.Agent != "Build" {
		t.Errorf("unexpected run opts %+v", opts)
	}
	if strings.Contains(opts.Prompt, "/oc_review") {
		t.Errorf("trigger phrase must be stripped from the prompt, got %q", opts.Prompt)
	}
	if !strings.Contains(opts.Prompt, "focus on auth") {
		t.Errorf("question must survive in the prompt, got %q", opts.Prompt)
	}

	if c.Agent == nil {
		t.Fatal("expected agent result set")
	}
	if c.Agent.Content != "Looks good overall." {
		t.Errorf("unexpected content %q", c.Agent.Content)
	}
	if c.Agent.Format != "markdown" {
		t.Errorf("expected markdown format, got %q", c.Agent.Format)
	}

	// Both audit files land in the workspace.
	if _, err := os.Stat(filepath.Join(c.Workspace, "opencode_events.jsonl")); err != nil {
		t.Errorf("expected event stream file: %v", err)
	}
	reply, err := os.ReadFile(filepath.Join(c.Workspace, "opencode_reply.md"))
	if err != nil {
		t.Fatalf("expected reply file: %v", err)
	}
	if !strings.Contains(string(reply), "Looks good overall.") {
		t.Errorf("unexpected reply content %q", reply)
	}
}

func TestAgentStage_EmptyQuestionPlaceholder(t *testing.T) {
	runner := &mockRunner{out: &agent.RunOutput{Stdout: `{"type":"text","part":{"text":"ok"}}`}}
	a := NewAgent(runner, AgentOpts{Template: "ask.md"}, discardLogger())

	c := agentContext(t, "/oc_ask", "/oc_ask")
	if res := a.Run(c); !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !strings.Contains(runner.opts[0].Prompt, "No additional question provided.") {
		t.Errorf("expected placeholder question, got %q", runner.opts[0].Prompt)
	}
}

func TestAgentStage_NoWorkspaceIsFatal(t *testing.T) {
	a := NewAgent(&mockRunner{}, AgentOpts{Template: "review.md"}, discardLogger())
	c := pipeline.NewContext("run-1", mrNotePayload("/oc_review"))

	res := a.Run(c)
	if res.Success() {
		t.Fatal("expected error without a workspace")
	}
}

func TestAgentStage_SpawnErrorIsFatal(t *testing.T) {
	runner := &mockRunner{err: errors.New("opencode: not found")}
	a := NewAgent(runner, AgentOpts{Template: "review.md"}, discardLogger())

	c := agentContext(t, "/oc_review x", "/oc_review")
	res := a.Run(c)
	if res.Success() {
		t.Fatal("expected spawn error to fail the stage")
	}
}

func TestAgentStage_NonZeroExitIsFatal(t *testing.T) {
	runner := &mockRunner{out: &agent.RunOutput{ExitCode: 1, Stderr: "model not found"}}
	a := NewAgent(runner, AgentOpts{Template: "review.md"}, discardLogger())

	c := agentContext(t, "/oc_review x", "/oc_review")
	res := a.Run(c)
	if res.Success() {
		t.Fatal("expected non-zero exit to fail the stage")
	}
	if !strings.Contains(res.Err.Error(), "model not found") {
		t.Errorf("expected stderr diagnostic in error, got %v", res.Err)
	}
}

func TestAgentStage_EmptyOutputPlaceholder(t *testing.T) {
	runner := &mockRunner{out: &agent.RunOutput{Stdout: `{"type":"step-start"}`}}
	a := NewAgent(runner, AgentOpts{Template: "review.md"}, discardLogger())

	c := agentContext(t, "/oc_review x", "/oc_review")
	if res := a.Run(c); !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if c.Agent.Content != "No response generated." {
		t.Errorf("expected placeholder content, got %q", c.Agent.Content)
	}
}

func TestAgentStage_IssueContextReferencedRelative(t *testing.T) {
	runner := &mockRunner{out: &agent.RunOutput{Stdout: `{"type":"text","part":{"text":"ok"}}`}}
	a := NewAgent(runner, AgentOpts{Template: "answer.md"}, discardLogger())

	c := agentContext(t, "/oc_test why?", "/oc_test")
	c.Meta[pipeline.MetaIssueContextPath] = filepath.Join(c.Workspace, IssueContextFilename)

	if res := a.Run(c); !res.Success() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	prompt := runner.opts[0].Prompt
	if !strings.Contains(prompt, IssueContextFilename) {
		t.Errorf("expected context file referenced in prompt, got %q", prompt)
	}
	if strings.Contains(prompt, c.Workspace) {
		t.Errorf("context file must be workspace-relative, got %q", prompt)
	}
}
