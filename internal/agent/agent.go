package agent

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RunOpts configures one agent invocation.
type RunOpts struct {
	Workdir string
	Model   string
	Agent   string
	Prompt  string
}

// RunOutput captures the raw outcome of an agent process.
type RunOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner invokes the reasoning agent. Interface for testing.
type Runner interface {
	Run(opts RunOpts) (*RunOutput, error)
}

// ExecRunner runs the opencode binary.
type ExecRunner struct {
	Binary string // defaults to "opencode"
}

// NewExecRunner creates an ExecRunner for the given binary path.
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "opencode"
	}
	return &ExecRunner{Binary: binary}
}

// Run invokes the agent with JSON event-stream output in the given
// working directory. A non-zero exit is reported through RunOutput, not
// as an error; err is reserved for spawn failures.
func (r *ExecRunner) Run(opts RunOpts) (*RunOutput, error) {
	args := []string{"run", "--format", "json"}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.Agent != "" {
		args = append(args, "--agent", opts.Agent)
	}
	args = append(args, opts.Prompt)

	cmd := exec.Command(r.Binary, args...)
	cmd.Dir = opts.Workdir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &RunOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, fmt.Errorf("%s run: %w", r.Binary, err)
	}
	return out, nil
}

// Diagnostic returns the best available error text for a failed run.
func (o *RunOutput) Diagnostic() string {
	if msg := strings.TrimSpace(o.Stderr); msg != "" {
		return msg
	}
	return "unknown agent error"
}
