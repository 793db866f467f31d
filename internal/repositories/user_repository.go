package repositories

import "github.com/VariaSlu/js-project-api/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id models.UserID) (*models.User, error)
}
