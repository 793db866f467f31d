package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VariaSlu/js-project-api/internal/models"
)

// GORMThoughtRepository is a GORM implementation of ThoughtRepository.
type GORMThoughtRepository struct {
	db *gorm.DB
}

// NewGORMThoughtRepository creates a new instance of GORMThoughtRepository.
func NewGORMThoughtRepository(db *gorm.DB) *GORMThoughtRepository {
	return &GORMThoughtRepository{
		db: db,
	}
}

// GetRecent retrieves up to limit thoughts, newest first.
func (r *GORMThoughtRepository) GetRecent(limit int) ([]models.Thought, error) {
	var thoughts []models.Thought
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&thoughts).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent thoughts: %w", err)
	}
	return thoughts, nil
}

// GetByID retrieves a single thought by its ID from the database.
func (r *GORMThoughtRepository) GetByID(id models.ThoughtID) (*models.Thought, error) {
	var thought models.Thought
	if err := r.db.First(&thought, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get thought by ID %s: %w", id, err)
	}
	return &thought, nil
}

// Create creates a new thought in the database.
func (r *GORMThoughtRepository) Create(thought *models.Thought) error {
	if thought.ID == "" {
		thought.ID = models.ThoughtID(uuid.New().String())
	}
	if err := r.db.Create(thought).Error; err != nil {
		return fmt.Errorf("failed to create thought: %w", err)
	}
	return nil
}

// UpdateMessage replaces the message of an existing thought and returns the
// updated record.
func (r *GORMThoughtRepository) UpdateMessage(id models.ThoughtID, message string) (*models.Thought, error) {
	res := r.db.Model(&models.Thought{}).Where("id = ?", string(id)).Update("message", message)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update thought %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(id)
}

// Delete deletes a thought by its ID from the database.
func (r *GORMThoughtRepository) Delete(id models.ThoughtID) error {
	res := r.db.Delete(&models.Thought{}, "id = ?", string(id))
	if res.Error != nil {
		return fmt.Errorf("failed to delete thought %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// IncrementHearts bumps the like counter by one with a single UPDATE so
// concurrent likes on the same thought never lose updates, then returns the
// fresh record.
func (r *GORMThoughtRepository) IncrementHearts(id models.ThoughtID) (*models.Thought, error) {
	res := r.db.Model(&models.Thought{}).
		Where("id = ?", string(id)).
		UpdateColumn("hearts", gorm.Expr("hearts + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to increment hearts for thought %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(id)
}
