package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentry-lab/mnemosyne/pkg/cli/config"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/usecase"
	"github.com/agentry-lab/mnemosyne/pkg/utils/safe"
)

func cmdMemories() *cli.Command {
	return &cli.Command{
		Name:  "memories",
		Usage: "Inspect and manage extracted memories",
		Commands: []*cli.Command{
			cmdMemoriesList(),
			cmdMemoriesForget(),
		},
	}
}

func withMemoryUseCase(repoCfg *config.Repository, fn func(ctx context.Context, uc *usecase.MemoryUseCase) error) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, c *cli.Command) error {
		repo, err := repoCfg.Configure(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize repository")
		}
		defer safe.Close(ctx, repo)

		return fn(ctx, usecase.NewMemoryUseCase(repo))
	}
}

func cmdMemoriesList() *cli.Command {
	var repoCfg config.Repository
	var owner string
	var workspace string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner user ID (required)",
			Required:    true,
			Destination: &owner,
		},
		&cli.StringFlag{
			Name:        "workspace",
			Usage:       "Restrict to memories visible in this workspace",
			Destination: &workspace,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:   "list",
		Usage:  "List a user's memories",
		Flags:  flags,
		Action: withMemoryUseCase(&repoCfg, func(ctx context.Context, uc *usecase.MemoryUseCase) error {
			var memories []*model.Memory
			var err error
			if workspace != "" {
				memories, err = uc.ListVisible(ctx, owner, workspace)
			} else {
				memories, err = uc.ListAll(ctx, owner)
			}
			if err != nil {
				return err
			}

			if len(memories) == 0 {
				fmt.Println("no memories")
				return nil
			}

			for _, m := range memories {
				fmt.Printf("%s  %s  %s: %s\n",
					color.HiBlackString(string(m.ID)),
					entityTypeColor(m.EntityType).Sprintf("%-10s", m.EntityType),
					color.CyanString(m.EntityName),
					m.Observation,
				)
				if m.WorkspaceID != "" {
					fmt.Printf("%s  workspace: %s\n", color.HiBlackString("          "), m.WorkspaceID)
				}
			}
			return nil
		}),
	}
}

func cmdMemoriesForget() *cli.Command {
	var repoCfg config.Repository
	var owner string
	var id string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner user ID (required)",
			Required:    true,
			Destination: &owner,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Memory ID to forget (required)",
			Required:    true,
			Destination: &id,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:   "forget",
		Usage:  "Permanently delete one memory",
		Flags:  flags,
		Action: withMemoryUseCase(&repoCfg, func(ctx context.Context, uc *usecase.MemoryUseCase) error {
			if err := uc.Forget(ctx, model.MemoryID(id), owner); err != nil {
				return err
			}
			color.Green("memory %s forgotten", id)
			return nil
		}),
	}
}

func entityTypeColor(et types.EntityType) *color.Color {
	switch et {
	case types.EntityTypePreference:
		return color.New(color.FgMagenta)
	case types.EntityTypeFact:
		return color.New(color.FgBlue)
	case types.EntityTypeGoal:
		return color.New(color.FgGreen)
	case types.EntityTypeConstraint:
		return color.New(color.FgRed)
	case types.EntityTypeStyle:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}
