package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"taskapp/internal/client"
	"taskapp/internal/config"
	"taskapp/internal/models"
	"taskapp/internal/storage"
	"taskapp/internal/tasks"
	"taskapp/internal/tui"
)

type rootOptions struct {
	configPath string
	remote     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	var env strings.Builder
	config.Usage(&env)

	root := &cobra.Command{
		Use:          "taskapp",
		Short:        "A minimal task list",
		Long:         "A minimal task list.\n\n" + env.String(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.remote, "remote", false, "talk to a running server at api_url instead of the database")

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newCompletionCmd(opts, "done", "Mark a task as completed", true),
		newCompletionCmd(opts, "undo", "Mark a task as not completed", false),
		newRemoveCmd(opts),
		newShowCmd(opts),
	)
	return root
}

// taskClient is implemented by both the in-process service and the HTTP client.
type taskClient interface {
	tui.Client
	GetTask(ctx context.Context, id int64) (models.Task, error)
}

// connect returns the task operations for the one-shot commands and the TUI.
// The returned close function is never nil.
func connect(ctx context.Context, opts *rootOptions) (taskClient, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	if opts.remote {
		return client.New(cfg.APIURL, nil), func() {}, nil
	}

	backend, err := storage.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close store", slog.String("error", err.Error()))
		}
	}
	return tasks.NewService(backend, tasks.WithLogger(logger)), closeFn, nil
}
