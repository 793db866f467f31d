package handlers

import (
	"errors"
	"log"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/VariaSlu/js-project-api/internal/middleware"
	"github.com/VariaSlu/js-project-api/internal/models"
	"github.com/VariaSlu/js-project-api/internal/repositories"
	"github.com/VariaSlu/js-project-api/internal/services"
)

// ThoughtHandler handles HTTP requests for thoughts.
type ThoughtHandler struct {
	service  *services.ThoughtService
	validate *validator.Validate
}

// NewThoughtHandler creates a new ThoughtHandler.
func NewThoughtHandler(service *services.ThoughtService) *ThoughtHandler {
	return &ThoughtHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the thought routes. Reads and likes are public;
// create, edit and delete require the auth middleware passed in.
func (h *ThoughtHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/", h.HandleRoot)

	thoughts := router.Group("/thoughts")
	thoughts.Get("/", h.HandleListThoughts)
	thoughts.Get("/:id", h.HandleGetThoughtByID)
	thoughts.Post("/", requireAuth, h.HandleCreateThought)
	thoughts.Patch("/:id", requireAuth, h.HandleEditThought)
	thoughts.Delete("/:id", requireAuth, h.HandleDeleteThought)
	thoughts.Post("/:id/like", h.HandleLikeThought)
}

// ThoughtRequest is the request body for posting or editing a thought.
type ThoughtRequest struct {
	Message string `json:"message" validate:"required,min=5,max=140"`
}

type endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// HandleRoot returns the API name and the live route table.
func (h *ThoughtHandler) HandleRoot(c *fiber.Ctx) error {
	seen := make(map[endpoint]bool)
	var endpoints []endpoint
	for _, route := range c.App().GetRoutes() {
		if route.Method == fiber.MethodHead || route.Path == "/" {
			continue
		}
		e := endpoint{Method: route.Method, Path: route.Path}
		if !seen[e] {
			seen[e] = true
			endpoints = append(endpoints, e)
		}
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})

	return c.JSON(fiber.Map{
		"message":   "Welcome to the Happy Thoughts API!",
		"endpoints": endpoints,
	})
}

// HandleListThoughts returns the 20 most recent thoughts, newest first.
func (h *ThoughtHandler) HandleListThoughts(c *fiber.Ctx) error {
	thoughts, err := h.service.ListRecent()
	if err != nil {
		log.Printf("Error listing thoughts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve thoughts",
		})
	}
	return c.JSON(thoughts)
}

// HandleGetThoughtByID returns a single thought.
func (h *ThoughtHandler) HandleGetThoughtByID(c *fiber.Ctx) error {
	id, ok := parseThoughtID(c)
	if !ok {
		return malformedID(c)
	}

	thought, err := h.service.GetThoughtByID(id)
	if err != nil {
		return h.respondThoughtError(c, id, err)
	}
	return c.JSON(thought)
}

// HandleCreateThought posts a new thought authored by the token subject.
func (h *ThoughtHandler) HandleCreateThought(c *fiber.Ctx) error {
	subject, ok := middleware.Subject(c)
	if !ok {
		return unauthenticated(c)
	}

	req, ok := h.parseThoughtRequest(c)
	if !ok {
		return nil
	}

	thought, err := h.service.CreateThought(req.Message, subject)
	if err != nil {
		log.Printf("Error creating thought: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create thought",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(thought)
}

// HandleEditThought updates the message of a thought owned by the subject.
func (h *ThoughtHandler) HandleEditThought(c *fiber.Ctx) error {
	subject, ok := middleware.Subject(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := parseThoughtID(c)
	if !ok {
		return malformedID(c)
	}

	req, ok := h.parseThoughtRequest(c)
	if !ok {
		return nil
	}

	thought, err := h.service.EditThought(id, subject, req.Message)
	if err != nil {
		return h.respondThoughtError(c, id, err)
	}
	return c.JSON(thought)
}

// HandleDeleteThought removes a thought owned by the subject.
func (h *ThoughtHandler) HandleDeleteThought(c *fiber.Ctx) error {
	subject, ok := middleware.Subject(c)
	if !ok {
		return unauthenticated(c)
	}

	id, ok := parseThoughtID(c)
	if !ok {
		return malformedID(c)
	}

	if err := h.service.DeleteThought(id, subject); err != nil {
		return h.respondThoughtError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"id":      id,
	})
}

// HandleLikeThought increments the like counter. No authentication required.
func (h *ThoughtHandler) HandleLikeThought(c *fiber.Ctx) error {
	id, ok := parseThoughtID(c)
	if !ok {
		return malformedID(c)
	}

	thought, err := h.service.LikeThought(id)
	if err != nil {
		return h.respondThoughtError(c, id, err)
	}
	return c.JSON(thought)
}

// parseThoughtRequest parses and validates the message body, writing the 400
// response itself when the body is bad.
func (h *ThoughtHandler) parseThoughtRequest(c *fiber.Ctx) (ThoughtRequest, bool) {
	var req ThoughtRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing thought request body: %v", err)
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": validationDetails(err),
		})
		return req, false
	}
	return req, true
}

// respondThoughtError maps service errors to the response taxonomy: 404 for
// missing records, 403 for ownership failures, 500 for everything else.
func (h *ThoughtHandler) respondThoughtError(c *fiber.Ctx, id models.ThoughtID, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Thought not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not the owner of this thought",
		})
	default:
		log.Printf("Error handling thought %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process thought",
		})
	}
}

func parseThoughtID(c *fiber.Ctx) (models.ThoughtID, bool) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return models.ThoughtID(raw), true
}

func malformedID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Malformed id",
	})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Missing token",
	})
}
