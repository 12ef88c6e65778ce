// Package repositories contains the database access layer.
package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Container holds all repositories and shares one connection pool
type Container struct {
	Applications *ApplicationRepository
	Documents    *DocumentRepository
	Users        *UserRepository
	Programs     *ProgramRepository
}

// NewContainer creates a repository container backed by the given pool
func NewContainer(pool *pgxpool.Pool) *Container {
	return &Container{
		Applications: NewApplicationRepository(pool),
		Documents:    NewDocumentRepository(pool),
		Users:        NewUserRepository(pool),
		Programs:     NewProgramRepository(pool),
	}
}
