package entity

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
)

// Actor аутентифицированный участник операции с разрешённым именем.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role valueobject.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}
