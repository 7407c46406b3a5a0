package repositories

import "context"

// Repository groups every repository behind one handle
type Repository interface {
	Account() AccountRepository
	Question() QuestionRepository
	Submission() SubmissionRepository

	// WithTransaction runs fn against repositories bound to a single transaction
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
