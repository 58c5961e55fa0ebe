package service

import (
	"fmt"
	"log/slog"

	"github.com/lucasnoah/notebot/internal/agent"
	"github.com/lucasnoah/notebot/internal/command"
	"github.com/lucasnoah/notebot/internal/config"
	"github.com/lucasnoah/notebot/internal/pipeline"
	"github.com/lucasnoah/notebot/internal/stage"
)

// Deps are the external collaborators the stages need.
type Deps struct {
	Notes         stage.NotePoster
	Issues        stage.IssueFetcher
	Workspaces    stage.WorkspaceCreator
	Agent         agent.Runner
	DefaultBranch string
	AgentModel    string
	TemplateDir   string
	Logger        *slog.Logger
}

// commandSpec is one entry of the builtin command catalog.
type commandSpec struct {
	name         string
	trigger      string
	template     string
	agentProfile string
	issueContext bool
}

// builtinCommands is the fixed command set. Trigger phrases must not be
// substrings of one another; Registry.Register enforces that.
var builtinCommands = []commandSpec{
	{name: "oc_review", trigger: "/oc_review", template: "review.md", agentProfile: "Build"},
	{name: "oc_ask", trigger: "/oc_ask", template: "ask.md", agentProfile: "Build"},
	{name: "oc_test", trigger: "/oc_test", template: "answer.md", agentProfile: "Build", issueContext: true},
}

// BuildRegistry constructs the command registry from the builtin
// catalog, applying any commands.yaml overrides.
func BuildRegistry(deps Deps, overrides *config.CommandsFile) (*command.Registry, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := command.NewRegistry()
	for _, spec := range builtinCommands {
		spec := spec
		model := deps.AgentModel
		if o, ok := overrides.Override(spec.name); ok {
			if o.Trigger != "" {
				spec.trigger = o.Trigger
			}
			if o.Template != "" {
				spec.template = o.Template
			}
			if o.Model != "" {
				model = o.Model
			}
		}

		agentOpts := stage.AgentOpts{
			Template:    spec.template,
			Model:       model,
			Agent:       spec.agentProfile,
			TemplateDir: deps.TemplateDir,
		}

		cmd := command.Command{
			Name:    spec.name,
			Trigger: spec.trigger,
			Build: func() *pipeline.Pipeline {
				stages := []pipeline.Stage{
					stage.NewGate(reg, deps.Notes, logger),
					stage.NewSnapshot(deps.DefaultBranch, logger),
					stage.NewWorkspace(deps.Workspaces, logger),
				}
				if spec.issueContext {
					stages = append(stages, stage.NewIssueContext(deps.Issues, logger))
				}
				stages = append(stages, stage.NewAgent(deps.Agent, agentOpts, logger))
				return pipeline.New(spec.name, stages, stage.NewPublish(deps.Notes, logger), logger)
			},
		}
		if err := reg.Register(cmd); err != nil {
			return nil, fmt.Errorf("register command %q: %w", spec.name, err)
		}
	}
	return reg, nil
}
