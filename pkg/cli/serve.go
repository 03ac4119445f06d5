package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentry-lab/mnemosyne/pkg/cli/config"
	httpctrl "github.com/agentry-lab/mnemosyne/pkg/controller/http"
	"github.com/agentry-lab/mnemosyne/pkg/service/extractor"
	"github.com/agentry-lab/mnemosyne/pkg/service/llm"
	"github.com/agentry-lab/mnemosyne/pkg/service/scheduler"
	"github.com/agentry-lab/mnemosyne/pkg/usecase"
	"github.com/agentry-lab/mnemosyne/pkg/utils/async"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
	"github.com/agentry-lab/mnemosyne/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var extractionCfg config.Extraction
	var seedCfg config.Seed

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MNEMOSYNE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, extractionCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the extraction scheduler with health endpoints",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			seed, err := seedCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load seed file")
			}
			if seed != nil {
				// Seeding does not block startup; the first cycle fires at
				// the next aligned instant, well after this finishes
				async.Dispatch(ctx, func(ctx context.Context) error {
					return seed.Apply(ctx, repo)
				})
			}

			svc, err := extractor.New(repo, llm.NewClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize extractor")
			}

			uc := usecase.New(repo, svc, extractionCfg.UseCaseOptions()...)

			sched, err := scheduler.New(repo.Mutex(), uc.Extraction.RunCycle,
				extractionCfg.SchedulerOptions()...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize scheduler")
			}
			if err := sched.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start scheduler")
			}

			httpHandler := httpctrl.New(
				httpctrl.WithBackend(repoCfg.Backend()),
				httpctrl.WithReadinessProbe("scheduler", sched.Alive),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				sched.Stop()
				return err

			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the scheduler first; an in-flight cycle finishes and
				// releases the fleet lock before the process exits
				sched.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
