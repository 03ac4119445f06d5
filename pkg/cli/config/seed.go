package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

// Seed holds the CLI flag for the workspace/provider seed file. Seeding
// exists so a dev-mode process with the in-memory backend has tenants to
// extract for; it also works against Firestore for bootstrapping.
type Seed struct {
	path string
}

// Flags returns CLI flags for seed configuration
func (s *Seed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "seed-file",
			Usage:       "TOML file with providers and workspaces to create at startup",
			Sources:     cli.EnvVars("MNEMOSYNE_SEED_FILE"),
			Destination: &s.path,
		},
	}
}

// SeedProvider is one [[provider]] entry in the seed file
type SeedProvider struct {
	ID              string            `toml:"id"`
	Name            string            `toml:"name"`
	Type            string            `toml:"type"`
	APIKey          string            `toml:"api_key"`
	BaseURL         string            `toml:"base_url"`
	Headers         map[string]string `toml:"headers"`
	ProjectID       string            `toml:"project_id"`
	Location        string            `toml:"location"`
	ExtractionModel string            `toml:"extraction_model"`
}

// SeedWorkspace is one [[workspace]] entry in the seed file
type SeedWorkspace struct {
	ID                 string `toml:"id"`
	Name               string `toml:"name"`
	OwnerUserID        string `toml:"owner_user_id"`
	ExtractionProvider string `toml:"extraction_provider"`
}

// SeedConfig is the parsed seed file
type SeedConfig struct {
	Providers  []SeedProvider  `toml:"provider"`
	Workspaces []SeedWorkspace `toml:"workspace"`
}

// Validate checks referential integrity of the seed file
func (c *SeedConfig) Validate() error {
	providerIDs := make(map[string]bool)
	for _, p := range c.Providers {
		if p.ID == "" {
			return goerr.New("seed provider ID is required", goerr.V("name", p.Name))
		}
		if providerIDs[p.ID] {
			return goerr.New("duplicate seed provider ID", goerr.V("id", p.ID))
		}
		providerIDs[p.ID] = true

		if _, err := types.ParseProviderType(p.Type); err != nil {
			return goerr.Wrap(err, "invalid seed provider type", goerr.V("id", p.ID))
		}
	}

	workspaceIDs := make(map[string]bool)
	for _, w := range c.Workspaces {
		if w.ID == "" {
			return goerr.New("seed workspace ID is required", goerr.V("name", w.Name))
		}
		if workspaceIDs[w.ID] {
			return goerr.New("duplicate seed workspace ID", goerr.V("id", w.ID))
		}
		workspaceIDs[w.ID] = true

		if w.ExtractionProvider != "" && !providerIDs[w.ExtractionProvider] {
			return goerr.New("seed workspace references unknown provider",
				goerr.V("workspace", w.ID),
				goerr.V("provider", w.ExtractionProvider))
		}
	}

	return nil
}

// Load parses and validates the seed file. Returns nil if no file is
// configured.
func (s *Seed) Load() (*SeedConfig, error) {
	if s.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read seed file", goerr.V("path", s.path))
	}

	var cfg SeedConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse seed file", goerr.V("path", s.path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid seed file", goerr.V("path", s.path))
	}

	return &cfg, nil
}

// Apply creates the seeded providers and workspaces. Records whose ID
// already exists are left untouched, so seeding is repeatable.
func (c *SeedConfig) Apply(ctx context.Context, repo interfaces.Repository) error {
	for _, p := range c.Providers {
		if _, err := repo.Provider().Get(ctx, model.ProviderID(p.ID)); err == nil {
			continue
		}

		providerType, err := types.ParseProviderType(p.Type)
		if err != nil {
			return err
		}
		if _, err := repo.Provider().Create(ctx, &model.Provider{
			ID:                model.ProviderID(p.ID),
			Name:              p.Name,
			Type:              providerType,
			APIKey:            p.APIKey,
			BaseURL:           p.BaseURL,
			Headers:           p.Headers,
			ProjectID:         p.ProjectID,
			Location:          p.Location,
			ExtractionModelID: p.ExtractionModel,
		}); err != nil {
			return goerr.Wrap(err, "failed to seed provider", goerr.V("id", p.ID))
		}
		logging.Default().Info("seeded provider", "id", p.ID, "type", p.Type)
	}

	for _, w := range c.Workspaces {
		if _, err := repo.Workspace().Get(ctx, w.ID); err == nil {
			continue
		}

		if _, err := repo.Workspace().Create(ctx, &model.Workspace{
			ID:                   w.ID,
			Name:                 w.Name,
			OwnerUserID:          w.OwnerUserID,
			ExtractionProviderID: model.ProviderID(w.ExtractionProvider),
		}); err != nil {
			return goerr.Wrap(err, "failed to seed workspace", goerr.V("id", w.ID))
		}
		logging.Default().Info("seeded workspace", "id", w.ID, "name", w.Name)
	}

	return nil
}
