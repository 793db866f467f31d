package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/VariaSlu/js-project-api/internal/models"
	"github.com/VariaSlu/js-project-api/internal/repositories"
	"github.com/VariaSlu/js-project-api/pkg/rabbitmq"
)

// ErrForbidden is returned when an authenticated user tries to mutate a
// thought they do not own. Distinct from repositories.ErrNotFound: the
// existence check always runs first.
var ErrForbidden = errors.New("not the owner of this thought")

// RecentLimit caps how many thoughts a listing returns.
const RecentLimit = 20

// ThoughtService handles business logic related to thoughts.
type ThoughtService struct {
	thoughtRepo repositories.ThoughtRepository
	mqClient    *rabbitmq.Client
}

// NewThoughtService creates a new ThoughtService. mqClient may be nil, in
// which case event publication is skipped.
func NewThoughtService(thoughtRepo repositories.ThoughtRepository, mqClient *rabbitmq.Client) *ThoughtService {
	return &ThoughtService{
		thoughtRepo: thoughtRepo,
		mqClient:    mqClient,
	}
}

// ListRecent retrieves the most recent thoughts, newest first.
func (s *ThoughtService) ListRecent() ([]models.Thought, error) {
	return s.thoughtRepo.GetRecent(RecentLimit)
}

// GetThoughtByID retrieves a single thought by its ID.
func (s *ThoughtService) GetThoughtByID(id models.ThoughtID) (*models.Thought, error) {
	return s.thoughtRepo.GetByID(id)
}

// CreateThought persists a new thought authored by the given user and
// publishes a thought.created event.
func (s *ThoughtService) CreateThought(message string, author models.UserID) (*models.Thought, error) {
	thought := &models.Thought{
		Message:   message,
		Hearts:    0,
		CreatedBy: author,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.thoughtRepo.Create(thought); err != nil {
		return nil, fmt.Errorf("failed to create thought in repository: %w", err)
	}

	s.publishEvent("thought.created", thought)
	return thought, nil
}

// EditThought replaces the message of a thought owned by subject. The
// existence check precedes the ownership check, which precedes the mutation.
func (s *ThoughtService) EditThought(id models.ThoughtID, subject models.UserID, message string) (*models.Thought, error) {
	thought, err := s.thoughtRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if thought.CreatedBy != subject {
		return nil, ErrForbidden
	}
	return s.thoughtRepo.UpdateMessage(id, message)
}

// DeleteThought removes a thought owned by subject.
func (s *ThoughtService) DeleteThought(id models.ThoughtID, subject models.UserID) error {
	thought, err := s.thoughtRepo.GetByID(id)
	if err != nil {
		return err
	}
	if thought.CreatedBy != subject {
		return ErrForbidden
	}
	return s.thoughtRepo.Delete(id)
}

// LikeThought atomically increments the like counter in the store and
// publishes a thought.liked event.
func (s *ThoughtService) LikeThought(id models.ThoughtID) (*models.Thought, error) {
	thought, err := s.thoughtRepo.IncrementHearts(id)
	if err != nil {
		return nil, err
	}

	s.publishEvent("thought.liked", thought)
	return thought, nil
}

// publishEvent sends a thought event to RabbitMQ. Publish failures are logged
// and never surfaced to the caller; the mutation has already been persisted.
func (s *ThoughtService) publishEvent(routingKey string, thought *models.Thought) {
	if s.mqClient == nil {
		return
	}

	event := rabbitmq.ThoughtEvent{
		ThoughtID: string(thought.ID),
		CreatedBy: string(thought.CreatedBy),
		Hearts:    thought.Hearts,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for thought %s: %v", routingKey, thought.ID, err)
		return
	}
	if err := s.mqClient.Publish("thought", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for thought %s: %v", routingKey, thought.ID, err)
	}
}
