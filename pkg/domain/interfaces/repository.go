package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Memory() MemoryRepository
	Conversation() ConversationRepository
	Workspace() WorkspaceRepository
	Provider() ProviderRepository
	Mutex() AdvisoryMutex

	Close() error
}
