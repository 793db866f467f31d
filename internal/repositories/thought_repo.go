package repositories

import "github.com/VariaSlu/js-project-api/internal/models"

// ThoughtRepository defines the interface for thought data access.
type ThoughtRepository interface {
	GetRecent(limit int) ([]models.Thought, error)
	GetByID(id models.ThoughtID) (*models.Thought, error)
	Create(thought *models.Thought) error
	UpdateMessage(id models.ThoughtID, message string) (*models.Thought, error)
	Delete(id models.ThoughtID) error
	// IncrementHearts must be an atomic increment-and-return against the
	// store, never a read-modify-write in process memory.
	IncrementHearts(id models.ThoughtID) (*models.Thought, error)
}
