package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentry-lab/mnemosyne/pkg/cli/config"
	"github.com/agentry-lab/mnemosyne/pkg/service/extractor"
	"github.com/agentry-lab/mnemosyne/pkg/service/llm"
	"github.com/agentry-lab/mnemosyne/pkg/usecase"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
	"github.com/agentry-lab/mnemosyne/pkg/utils/safe"
)

// cmdExtract runs exactly one extraction cycle in the foreground. It takes
// the same fleet lock as the scheduler, so running it next to live replicas
// is safe: either it wins the cycle or it reports who holds the lock.
func cmdExtract() *cli.Command {
	var repoCfg config.Repository
	var extractionCfg config.Extraction
	var seedCfg config.Seed

	flags := []cli.Flag{}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, extractionCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Run one extraction cycle and exit",
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
				if err := seed.Apply(ctx, repo); err != nil {
					return goerr.Wrap(err, "failed to apply seed file")
				}
			}

			svc, err := extractor.New(repo, llm.NewClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize extractor")
			}
			uc := usecase.New(repo, svc, extractionCfg.UseCaseOptions()...)

			lockKey := extractionCfg.LockKey()
			acquired, err := repo.Mutex().TryLock(ctx, lockKey)
			if err != nil {
				return goerr.Wrap(err, "failed to acquire extraction lock")
			}
			if !acquired {
				color.Yellow("extraction lock %q is held by another replica, nothing to do", lockKey)
				return nil
			}
			defer func() {
				if err := repo.Mutex().Unlock(ctx, lockKey); err != nil {
					logging.Default().Error("failed to release extraction lock", "error", err.Error())
				}
			}()

			fmt.Printf("running one extraction cycle (%s backend)\n", repoCfg.Backend())

			startedAt := time.Now()
			if err := uc.Extraction.RunCycle(ctx); err != nil {
				color.Red("extraction cycle failed after %s", time.Since(startedAt).Round(time.Millisecond))
				return err
			}

			color.Green("extraction cycle completed in %s", time.Since(startedAt).Round(time.Millisecond))
			return nil
		},
	}
}
