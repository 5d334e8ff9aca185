package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/videoserver/provider/internal/config"
	"github.com/videoserver/provider/internal/db"
	"github.com/videoserver/provider/internal/handlers"
	"github.com/videoserver/provider/internal/httpserver"
	"github.com/videoserver/provider/internal/logging"
	"github.com/videoserver/provider/internal/middleware"
)

// Run executes the video server provider CLI with the supplied arguments.
func Run(ctx context.Context, args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "videoserver-provider",
		Short:         "Hands repository video assets to the video server backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newUploadCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP upload trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <contentId>",
		Short: "Upload one video asset to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return upload(cmd.Context(), cmd, args[0])
		},
	}
}

func setup(ctx context.Context) (config.Config, *slog.Logger, func(), dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, dependencies{}, err
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, nil, dependencies{}, err
	}

	deps, err := buildDependencies(ctx, pool, cfg)
	if err != nil {
		pool.Close()
		return config.Config{}, nil, nil, dependencies{}, err
	}

	return cfg, logger, pool.Close, deps, nil
}

func upload(ctx context.Context, cmd *cobra.Command, contentID string) error {
	_, logger, cleanup, deps, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = logging.WithLogger(ctx, logger)

	asset, err := deps.Assets.FindByContentID(ctx, contentID)
	if err != nil {
		return fmt.Errorf("load video asset %s: %w", contentID, err)
	}

	if err := deps.Uploader.Process(ctx, asset); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "dispatched %s\n", contentID)
	return nil
}

func serve(ctx context.Context) error {
	cfg, logger, cleanup, deps, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.Handlers)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler, cfg.UploadTimeout)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
