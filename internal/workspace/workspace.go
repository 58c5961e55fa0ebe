package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GitRunner provides git commands. Interface for testing.
type GitRunner interface {
	Run(dir string, args ...string) (string, error)
}

// ExecGit implements GitRunner using exec.Command.
type ExecGit struct{}

func (g *ExecGit) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Manager materializes disposable per-run checkouts.
type Manager struct {
	git     GitRunner
	baseDir string // where run workspaces are created
	token   string // transport credential, injected into clone URLs, never logged
}

// NewManager creates a workspace manager. baseDir may be empty, in which
// case the system temp directory is used.
func NewManager(git GitRunner, baseDir string, token string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{git: git, baseDir: baseDir, token: token}
}

// CreateOpts holds options for materializing a workspace.
type CreateOpts struct {
	CloneURL string
	SHA      string // exact revision to check out, wins over Branch
	Branch   string // branch to check out when no SHA was resolved
}

// Create clones the repository into a uniquely-named directory and
// checks out the requested revision. The returned path is exclusively
// owned by the caller. Partial directories are left in place on error;
// the pipeline's unconditional cleanup removes them.
func (m *Manager) Create(opts CreateOpts) (string, error) {
	if opts.CloneURL == "" {
		return "", fmt.Errorf("no clone URL in event payload")
	}

	path := filepath.Join(m.baseDir, "notebot-"+uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create workspace dir: %w", err)
	}

	if _, err := m.git.Run("", "clone", injectCredentials(opts.CloneURL, m.token), path); err != nil {
		return path, fmt.Errorf("clone repository: %w", redactToken(err, m.token))
	}

	switch {
	case opts.SHA != "":
		if _, err := m.git.Run(path, "checkout", opts.SHA); err != nil {
			return path, fmt.Errorf("checkout %s: %w", opts.SHA, err)
		}
	case opts.Branch != "":
		if _, err := m.git.Run(path, "checkout", opts.Branch); err != nil {
			return path, fmt.Errorf("checkout branch %s: %w", opts.Branch, err)
		}
	}

	return path, nil
}

// Remove deletes a workspace directory. Missing directories are not an
// error.
func (m *Manager) Remove(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(path)
}

// injectCredentials rewrites an https clone URL to carry the token.
func injectCredentials(url, token string) string {
	if token == "" {
		return url
	}
	return strings.Replace(url, "https://", fmt.Sprintf("https://gitlab:%s@", token), 1)
}

// redactToken scrubs the credential from error text before it can reach
// logs or user-visible comments.
func redactToken(err error, token string) error {
	if token == "" || err == nil {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), token, "***")
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s", msg)
}
