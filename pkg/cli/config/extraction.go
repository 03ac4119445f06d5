package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/agentry-lab/mnemosyne/pkg/service/scheduler"
	"github.com/agentry-lab/mnemosyne/pkg/usecase"
)

// Extraction holds CLI flags for the extraction cycle
type Extraction struct {
	interval  time.Duration
	batchSize int
	cooldown  time.Duration
	lockKey   string
}

// Flags returns CLI flags for extraction configuration
func (e *Extraction) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "extraction-interval",
			Usage:       "Spacing between extraction cycles (wall-clock aligned)",
			Value:       scheduler.DefaultInterval,
			Sources:     cli.EnvVars("MNEMOSYNE_EXTRACTION_INTERVAL"),
			Destination: &e.interval,
		},
		&cli.IntFlag{
			Name:        "extraction-batch-size",
			Usage:       "Maximum conversations processed per cycle",
			Value:       usecase.DefaultBatchSize,
			Sources:     cli.EnvVars("MNEMOSYNE_EXTRACTION_BATCH_SIZE"),
			Destination: &e.batchSize,
		},
		&cli.DurationFlag{
			Name:        "extraction-failure-cooldown",
			Usage:       "Wait before a failed conversation becomes eligible again",
			Value:       usecase.DefaultFailureCooldown,
			Sources:     cli.EnvVars("MNEMOSYNE_EXTRACTION_FAILURE_COOLDOWN"),
			Destination: &e.cooldown,
		},
		&cli.StringFlag{
			Name:        "extraction-lock-key",
			Usage:       "Advisory lock key shared by the fleet",
			Value:       scheduler.DefaultLockKey,
			Sources:     cli.EnvVars("MNEMOSYNE_EXTRACTION_LOCK_KEY"),
			Destination: &e.lockKey,
		},
	}
}

// Interval returns the configured cycle interval
func (e *Extraction) Interval() time.Duration {
	return e.interval
}

// LockKey returns the configured advisory lock key
func (e *Extraction) LockKey() string {
	return e.lockKey
}

// UseCaseOptions returns the usecase options derived from the flags
func (e *Extraction) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithBatchSize(e.batchSize),
		usecase.WithFailureCooldown(e.cooldown),
	}
}

// SchedulerOptions returns the scheduler options derived from the flags
func (e *Extraction) SchedulerOptions() []scheduler.Option {
	return []scheduler.Option{
		scheduler.WithInterval(e.interval),
		scheduler.WithLockKey(e.lockKey),
	}
}
