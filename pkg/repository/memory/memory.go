package memory

import (
	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend used for development mode and
// tests. All sub-repositories share nothing; each guards its own map.
type Memory struct {
	memories      *memoryRepository
	conversations *conversationRepository
	workspaces    *workspaceRepository
	providers     *providerRepository
	mutex         *advisoryMutex
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		memories:      newMemoryRepository(),
		conversations: newConversationRepository(),
		workspaces:    newWorkspaceRepository(),
		providers:     newProviderRepository(),
		mutex:         newAdvisoryMutex(),
	}
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memories
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversations
}

func (m *Memory) Workspace() interfaces.WorkspaceRepository {
	return m.workspaces
}

func (m *Memory) Provider() interfaces.ProviderRepository {
	return m.providers
}

func (m *Memory) Mutex() interfaces.AdvisoryMutex {
	return m.mutex
}

func (m *Memory) Close() error {
	return nil
}
