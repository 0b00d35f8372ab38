package repositories

import (
	"github.com/mesconnect/backend/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	ConnectionRepository *ConnectionRepository
	MessageRepository    *MessageRepository
	ConfessionRepository *ConfessionRepository
	EventRepository      *EventRepository
	GroupRepository      *GroupRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(database),
		ConnectionRepository: NewConnectionRepository(database),
		MessageRepository:    NewMessageRepository(database),
		ConfessionRepository: NewConfessionRepository(database),
		EventRepository:      NewEventRepository(database),
		GroupRepository:      NewGroupRepository(database),
	}
}
