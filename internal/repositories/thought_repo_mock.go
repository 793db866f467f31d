package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VariaSlu/js-project-api/internal/models"
)

// MockThoughtRepository is an in-memory implementation of ThoughtRepository.
type MockThoughtRepository struct {
	thoughts map[models.ThoughtID]models.Thought
	mu       sync.RWMutex
}

// NewMockThoughtRepository creates a new instance of MockThoughtRepository.
func NewMockThoughtRepository() *MockThoughtRepository {
	return &MockThoughtRepository{
		thoughts: make(map[models.ThoughtID]models.Thought),
	}
}

// GetRecent returns up to limit thoughts, newest first.
func (r *MockThoughtRepository) GetRecent(limit int) ([]models.Thought, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thoughtList := make([]models.Thought, 0, len(r.thoughts))
	for _, t := range r.thoughts {
		thoughtList = append(thoughtList, t)
	}
	sort.Slice(thoughtList, func(i, j int) bool {
		return thoughtList[i].CreatedAt.After(thoughtList[j].CreatedAt)
	})
	if len(thoughtList) > limit {
		thoughtList = thoughtList[:limit]
	}
	return thoughtList, nil
}

// GetByID returns a thought by its ID.
func (r *MockThoughtRepository) GetByID(id models.ThoughtID) (*models.Thought, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thought, ok := r.thoughts[id]
	if !ok {
		return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	return &thought, nil
}

// Create adds a new thought.
func (r *MockThoughtRepository) Create(thought *models.Thought) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if thought.ID == "" {
		thought.ID = models.ThoughtID(uuid.New().String())
	}
	if thought.CreatedAt.IsZero() {
		thought.CreatedAt = time.Now()
	}
	thought.UpdatedAt = time.Now()
	r.thoughts[thought.ID] = *thought
	return nil
}

// UpdateMessage replaces the message of an existing thought.
func (r *MockThoughtRepository) UpdateMessage(id models.ThoughtID, message string) (*models.Thought, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	thought, ok := r.thoughts[id]
	if !ok {
		return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	thought.Message = message
	thought.UpdatedAt = time.Now()
	r.thoughts[id] = thought
	return &thought, nil
}

// Delete removes a thought by its ID.
func (r *MockThoughtRepository) Delete(id models.ThoughtID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.thoughts[id]
	if !ok {
		return fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	delete(r.thoughts, id)
	return nil
}

// IncrementHearts bumps the like counter under the write lock, mirroring the
// atomic increment the GORM implementation performs in the store.
func (r *MockThoughtRepository) IncrementHearts(id models.ThoughtID) (*models.Thought, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	thought, ok := r.thoughts[id]
	if !ok {
		return nil, fmt.Errorf("thought with ID %s: %w", id, ErrNotFound)
	}
	thought.Hearts++
	thought.UpdatedAt = time.Now()
	r.thoughts[id] = thought
	return &thought, nil
}
