// Package services contains the business logic layer.
package services

import (
	"github.com/admitflow/admitflow/internal/app/repositories"
	"github.com/admitflow/admitflow/internal/pkg/auth"
	"github.com/admitflow/admitflow/internal/pkg/docstore"
)

// Container holds all services
type Container struct {
	Auth         AuthService
	Users        UserService
	Applications ApplicationService
	Transitions  TransitionService
	Lifecycle    LifecycleService
	Documents    DocumentService
	Programs     ProgramService
}

// NewContainer wires all services to the repository container, the
// document store, and the token signer.
func NewContainer(repos *repositories.Container, docStore docstore.DocumentStore, jwtService *auth.JWTService) *Container {
	return &Container{
		Auth:         NewAuthService(repos.Users, jwtService),
		Users:        NewUserService(repos.Users),
		Applications: NewApplicationService(repos.Applications, repos.Programs, repos.Documents),
		Transitions:  NewTransitionService(repos.Applications),
		Lifecycle:    NewLifecycleService(repos.Applications, repos.Documents, docStore),
		Documents:    NewDocumentService(repos.Applications, repos.Documents, docStore),
		Programs:     NewProgramService(repos.Programs),
	}
}
