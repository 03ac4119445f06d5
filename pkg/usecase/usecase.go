package usecase

import (
	"time"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/service/extractor"
)

type UseCases struct {
	repo       interfaces.Repository
	Extraction *ExtractionUseCase
	Memory     *MemoryUseCase
}

type Option func(*UseCases)

// WithBatchSize overrides the per-cycle conversation cap
func WithBatchSize(n int) Option {
	return func(uc *UseCases) {
		uc.Extraction.batchSize = n
	}
}

// WithFailureCooldown overrides how long a failed conversation waits before
// it becomes eligible again
func WithFailureCooldown(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.Extraction.failureCooldown = d
	}
}

func New(repo interfaces.Repository, svc *extractor.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		Extraction: NewExtractionUseCase(repo, svc),
		Memory:     NewMemoryUseCase(repo),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
