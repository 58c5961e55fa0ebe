package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lucasnoah/notebot/internal/agent"
	"github.com/lucasnoah/notebot/internal/command"
	"github.com/lucasnoah/notebot/internal/config"
	"github.com/lucasnoah/notebot/internal/db"
	"github.com/lucasnoah/notebot/internal/gitlab"
	"github.com/lucasnoah/notebot/internal/service"
	"github.com/lucasnoah/notebot/internal/workspace"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *db.DB
	registry *command.Registry
	service  *service.Service
}

func (a *app) close() {
	if a.database != nil {
		a.database.Close()
	}
}

// loadConfig loads .env and the YAML/env configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildApp wires the collaborators, run-history database, command
// registry, and service from configuration.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	database, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	gl := gitlab.NewClient(cfg.GitLab.URL, cfg.GitLab.Token, logger)
	workspaces := workspace.NewManager(&workspace.ExecGit{}, filepath.Join(dataDir, "workspaces"), cfg.GitLab.Token)
	runner := agent.NewExecRunner(cfg.Agent.Binary)

	var overrides *config.CommandsFile
	if cfg.CommandsFile != "" {
		overrides, err = config.LoadCommands(cfg.CommandsFile)
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	registry, err := service.BuildRegistry(service.Deps{
		Notes:         gl,
		Issues:        gl,
		Workspaces:    workspaces,
		Agent:         runner,
		DefaultBranch: cfg.GitLab.DefaultBranch,
		AgentModel:    cfg.Agent.Model,
		TemplateDir:   cfg.Agent.TemplateDir,
		Logger:        logger,
	}, overrides)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		registry: registry,
		service:  service.New(registry, database, logger),
	}, nil
}
