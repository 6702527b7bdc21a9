// Package app provides application initialization and dependency wiring.
//
// App is the container that builds the persistence collaborator, the
// conversation ledger, the history store, the agent client, the upload
// manager, and the generation orchestrator from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/proposalstudio/proposalstudio/internal/agentclient"
	"github.com/proposalstudio/proposalstudio/internal/config"
	"github.com/proposalstudio/proposalstudio/internal/history"
	"github.com/proposalstudio/proposalstudio/internal/kvstore"
	"github.com/proposalstudio/proposalstudio/internal/ledger"
	"github.com/proposalstudio/proposalstudio/internal/log"
	"github.com/proposalstudio/proposalstudio/internal/orchestrator"
	"github.com/proposalstudio/proposalstudio/internal/settings"
	"github.com/proposalstudio/proposalstudio/internal/upload"
)

// App is the core application container.
type App struct {
	Config       *config.Config
	Logger       log.Logger
	KV           kvstore.KV
	Settings     settings.Settings
	Ledger       *ledger.Ledger
	History      *history.Store
	Orchestrator *orchestrator.Orchestrator
	Uploads      *upload.Manager

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the application from configuration.
func New(cfg *config.Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AgentID == "" {
		return nil, fmt.Errorf("%w: set agent_id in the config file or PROPOSAL_AGENT_ID", config.ErrMissingAgentID)
	}

	kv, err := kvstore.NewFile(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data store: %w", err)
	}

	turns := ledger.New()
	entries := history.New(kv, logger.With("component", "history"))
	prefs := settings.Load(kv)

	invoker, err := agentclient.New(agentclient.Config{
		BaseURL: cfg.AgentBaseURL,
		APIKey:  cfg.APIKey,
		Logger:  logger.With("component", "agentclient"),
	})
	if err != nil {
		return nil, fmt.Errorf("building agent client: %w", err)
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Ledger:       turns,
		History:      entries,
		Invoker:      invoker,
		AgentID:      cfg.AgentID,
		Logger:       logger.With("component", "orchestrator"),
		TickInterval: cfg.ProgressInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	trainer, err := upload.NewHTTPTrainer(cfg.AgentBaseURL, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("building trainer: %w", err)
	}
	uploads, err := upload.NewManager(trainer, cfg.CollectionID, logger.With("component", "upload"))
	if err != nil {
		return nil, fmt.Errorf("building upload manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:       cfg,
		Logger:       logger,
		KV:           kv,
		Settings:     prefs,
		Ledger:       turns,
		History:      entries,
		Orchestrator: orch,
		Uploads:      uploads,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Context returns the application lifecycle context.
func (a *App) Context() context.Context {
	return a.ctx
}

// SaveSettings persists the current settings snapshot.
func (a *App) SaveSettings() error {
	return settings.Save(a.KV, a.Settings)
}

// Close shuts the application down: cancels the lifecycle context and waits
// for in-flight uploads.
func (a *App) Close() error {
	a.Logger.Info("shutting down")
	a.cancel()
	a.Uploads.Wait()
	return nil
}
