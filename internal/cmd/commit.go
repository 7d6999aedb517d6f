package cmd

import (
	"context"

	"github.com/commitsmith/commitsmith/internal/app"
	"github.com/commitsmith/commitsmith/internal/pkg/ai"
	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
	"github.com/commitsmith/commitsmith/internal/pkg/git"
	"github.com/commitsmith/commitsmith/internal/pkg/history"
	"github.com/commitsmith/commitsmith/internal/pkg/security"
	"github.com/commitsmith/commitsmith/internal/pkg/ui"
)

// run persists the configuration flags, then either prints information or
// generates and commits a message.
func run(ctx context.Context, flags *rootFlags, streams Streams) error {
	store, err := config.NewStore("")
	if err != nil {
		return err
	}

	if err := applyConfigFlags(store, flags); err != nil {
		return err
	}

	// The configuration is rebuilt once, after every flag has been saved.
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	logConfig(store, cfg)

	switch {
	case flags.printConfig:
		return printConfig(streams.Out, store, cfg)
	case flags.showHistory:
		return printHistory(streams.Out, history.NewDirManager(store.Dir()))
	}

	return runCommit(ctx, flags, streams, store, cfg)
}

// runCommit executes the generate and commit workflow.
func runCommit(ctx context.Context, flags *rootFlags, streams Streams, store config.Store, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := security.CheckAPIKeyFormat(string(cfg.Provider), cfg.APIKey); err != nil {
		apperrors.Warn("%v", err)
	}

	gitClient, err := git.Open(ctx, ".")
	if err != nil {
		return err
	}
	apperrors.Debug("Repository root: %s", gitClient.WorkDir())

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		return err
	}

	service := app.NewCommitService(
		gitClient,
		provider,
		ui.NewTerminalManager(streams.In, streams.Out, streams.Err),
		history.NewDirManager(store.Dir()),
		cfg,
	)

	_, err = service.Run(ctx, app.Options{
		StageAll:    flags.stageAll,
		Preview:     flags.preview,
		MessageOnly: flags.messageOnly,
		Push:        flags.push,
	})
	return err
}

// logConfig echoes the resolved configuration in debug mode.
func logConfig(store config.Store, cfg config.Config) {
	apperrors.Debug("Config directory: %s", store.Dir())
	apperrors.Debug("Provider: %s, base URL: %s, model: %s, API key: %s",
		cfg.Provider, cfg.BaseURL, cfg.Model, security.DescribeAPIKey(cfg.APIKey))
}
