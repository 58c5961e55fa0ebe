package stage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasnoah/notebot/internal/event"
	"github.com/lucasnoah/notebot/internal/gitlab"
	"github.com/lucasnoah/notebot/internal/pipeline"
)

// IssueContextFilename is where the rendered thread document lands
// inside the workspace.
const IssueContextFilename = "gitlab_issue_content.md"

// IssueFetcher reads issues and their notes. Implemented by
// gitlab.Client.
type IssueFetcher interface {
	GetIssue(projectID, iid int) (*gitlab.Issue, error)
	ListIssueNotes(projectID, iid int) ([]gitlab.Note, error)
}

// IssueContext fetches the issue description and discussion for issue
// threads and writes them into the workspace as a readable document.
// Strictly additive: every failure degrades to a logged no-op.
type IssueContext struct {
	issues IssueFetcher
	logger *slog.Logger
}

// NewIssueContext creates the auxiliary-context fetcher stage.
func NewIssueContext(issues IssueFetcher, logger *slog.Logger) *IssueContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueContext{issues: issues, logger: logger}
}

func (i *IssueContext) Name() string { return "issue_context" }

func (i *IssueContext) Run(c *pipeline.Context) pipeline.StageResult {
	if c.Meta[pipeline.MetaNoteableType] != event.NoteableIssue {
		return pipeline.StageResult{Context: c}
	}
	if c.Workspace == "" {
		i.logger.Info("issue context skipped: no workspace")
		return pipeline.StageResult{Context: c}
	}

	projectID := c.Payload.Project.ID
	iid := c.Payload.NoteableIID()
	if projectID == 0 || iid == 0 {
		i.logger.Info("issue context skipped: missing project or issue id")
		return pipeline.StageResult{Context: c}
	}

	issue, err := i.issues.GetIssue(projectID, iid)
	if err != nil {
		i.logger.Warn("issue context skipped: fetch issue failed", slog.String("error", err.Error()))
		return pipeline.StageResult{Context: c}
	}
	notes, err := i.issues.ListIssueNotes(projectID, iid)
	if err != nil {
		i.logger.Warn("issue context skipped: fetch notes failed", slog.String("error", err.Error()))
		return pipeline.StageResult{Context: c}
	}

	path := filepath.Join(c.Workspace, IssueContextFilename)
	if err := os.WriteFile(path, []byte(renderIssueDocument(issue, notes)), 0o644); err != nil {
		i.logger.Warn("issue context skipped: write failed", slog.String("error", err.Error()))
		return pipeline.StageResult{Context: c}
	}

	c.Meta[pipeline.MetaIssueContextPath] = path
	i.logger.Info("issue context saved", slog.String("path", path))
	return pipeline.StageResult{Context: c}
}

// renderIssueDocument formats an issue and its notes, oldest first, as
// a single markdown document.
func renderIssueDocument(issue *gitlab.Issue, notes []gitlab.Note) string {
	var b strings.Builder
	b.WriteString("# GitLab Issue Context\n\n")
	b.WriteString(fmt.Sprintf("Title: %s\n", issue.Title))
	if issue.State != "" {
		b.WriteString(fmt.Sprintf("State: %s\n", issue.State))
	}

	desc := strings.TrimSpace(issue.Description)
	if desc == "" {
		desc = "No description provided."
	}
	b.WriteString("\n## Description\n")
	b.WriteString(desc)
	b.WriteString("\n\n## Notes\n")

	if len(notes) == 0 {
		b.WriteString("No notes found.\n")
		return b.String()
	}

	for _, n := range notes {
		author := n.Author.Name
		if author == "" {
			author = "Unknown"
		}
		header := "### " + author
		if n.CreatedAt != "" {
			header += " (" + n.CreatedAt + ")"
		}
		body := strings.TrimSpace(n.Body)
		if body == "" {
			body = "_No content_"
		}
		b.WriteString("\n" + header + "\n" + body + "\n")
	}
	return b.String()
}
