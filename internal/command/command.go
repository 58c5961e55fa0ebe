package command

import (
	"fmt"
	"strings"

	"github.com/lucasnoah/notebot/internal/pipeline"
)

// Command maps a trigger phrase to a pipeline definition. Commands are
// registered once at process start and never mutated.
type Command struct {
	Name    string
	Trigger string

	// Build constructs a fresh Pipeline for one run. Pipelines are
	// stateless templates, so rebuilding per event is cheap and keeps
	// runs independent.
	Build func() *pipeline.Pipeline
}

// Registry holds all known commands. Immutable after startup and safe
// for unsynchronized concurrent reads.
type Registry struct {
	commands []Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a command. Trigger detection is substring-based and
// first-registered-wins, so registration fails when a new trigger is a
// substring of an existing one (or vice versa) or a name is reused,
// since that would make matching order-dependent.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Trigger == "" {
		return fmt.Errorf("command needs a name and a trigger phrase")
	}
	if cmd.Build == nil {
		return fmt.Errorf("command %q has no pipeline", cmd.Name)
	}
	for _, existing := range r.commands {
		if existing.Name == cmd.Name {
			return fmt.Errorf("command %q already registered", cmd.Name)
		}
		if strings.Contains(existing.Trigger, cmd.Trigger) || strings.Contains(cmd.Trigger, existing.Trigger) {
			return fmt.Errorf("trigger %q collides with %q of command %q", cmd.Trigger, existing.Trigger, existing.Name)
		}
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Detect returns the first registered command whose trigger phrase is a
// substring of text. At most one command fires per event.
func (r *Registry) Detect(text string) (name string, trigger string, ok bool) {
	for _, cmd := range r.commands {
		if strings.Contains(text, cmd.Trigger) {
			return cmd.Name, cmd.Trigger, true
		}
	}
	return "", "", false
}

// Resolve builds a fresh Pipeline for the named command. Returns false
// for unknown names.
func (r *Registry) Resolve(name string) (*pipeline.Pipeline, bool) {
	for _, cmd := range r.commands {
		if cmd.Name == name {
			return cmd.Build(), true
		}
	}
	return nil, false
}

// Names lists registered command names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		names[i] = cmd.Name
	}
	return names
}
