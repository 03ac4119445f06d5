package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
)

type Firestore struct {
	client        *firestore.Client
	memories      *memoryRepository
	conversations *conversationRepository
	workspaces    *workspaceRepository
	providers     *providerRepository
	mutex         *advisoryMutex
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, used to isolate test
// runs sharing one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.memories.collectionPrefix = prefix
		f.conversations.collectionPrefix = prefix
		f.workspaces.collectionPrefix = prefix
		f.providers.collectionPrefix = prefix
		f.mutex.collectionPrefix = prefix
	}
}

// WithLockLeaseTTL overrides the advisory lock lease duration. A lease left
// behind by a crashed holder can be taken over after it expires.
func WithLockLeaseTTL(ttl time.Duration) Option {
	return func(f *Firestore) {
		f.mutex.leaseTTL = ttl
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	f := &Firestore{
		client:        client,
		memories:      newMemoryRepository(client),
		conversations: newConversationRepository(client),
		workspaces:    newWorkspaceRepository(client),
		providers:     newProviderRepository(client),
		mutex:         newAdvisoryMutex(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Memory() interfaces.MemoryRepository {
	return f.memories
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversations
}

func (f *Firestore) Workspace() interfaces.WorkspaceRepository {
	return f.workspaces
}

func (f *Firestore) Provider() interfaces.ProviderRepository {
	return f.providers
}

func (f *Firestore) Mutex() interfaces.AdvisoryMutex {
	return f.mutex
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
