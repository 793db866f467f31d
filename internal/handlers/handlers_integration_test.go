package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VariaSlu/js-project-api/internal/handlers"
	"github.com/VariaSlu/js-project-api/internal/middleware"
	"github.com/VariaSlu/js-project-api/internal/models"
	"github.com/VariaSlu/js-project-api/internal/repositories"
	"github.com/VariaSlu/js-project-api/internal/services"
)

const testJWTSecret = "test_jwt_secret"

// setupApp builds the full Fiber app over a private in-memory SQLite database.
// Each test gets its own database so accounts never collide across tests.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", testJWTSecret)
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Thought{})
	assert.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	thoughtRepo := repositories.NewGORMThoughtRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	thoughtService := services.NewThoughtService(thoughtRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	thoughtHandler := handlers.NewThoughtHandler(thoughtService)

	app := fiber.New()
	authHandler.RegisterRoutes(app)
	thoughtHandler.RegisterRoutes(app, middleware.AuthRequired(authService))

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON issues a request against the app, optionally with a bearer token.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	resp.Body.Close()
	return body
}

// signupAndLogin registers a fresh account and returns its id and token.
func signupAndLogin(t *testing.T, app *fiber.App, email, password string) (id, token string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	signupBody := decodeBody(t, resp)
	id, _ = signupBody["id"].(string)
	assert.NotEmpty(t, id)

	resp = doJSON(t, app, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loginBody := decodeBody(t, resp)
	token, _ = loginBody["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, id, loginBody["id"])
	return id, token
}

func TestSignupAndLogin(t *testing.T) {
	app := setupApp(t)

	// Signup returns id and email only, never the password or its hash.
	resp := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    "a@b.com",
		"password": "secret1",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "a@b.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "Password")

	// Reusing the email is a 400 validation failure, not a conflict reveal.
	resp = doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    "a@b.com",
		"password": "secret2",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Validation failed", body["error"])

	// Bad email and short password are rejected up front.
	resp = doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    "not-an-email",
		"password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    "c@d.com",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Valid login returns a usable token.
	resp = doJSON(t, app, http.MethodPost, "/login", map[string]string{
		"email":    "a@b.com",
		"password": "secret1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "a@b.com", body["email"])
}

func TestLoginEnumerationResistance(t *testing.T) {
	app := setupApp(t)
	signupAndLogin(t, app, "known@example.com", "rightpassword")

	// Wrong password for a real account and a login against an account that
	// does not exist must be byte-for-byte identical.
	wrongPassword := doJSON(t, app, http.MethodPost, "/login", map[string]string{
		"email":    "known@example.com",
		"password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	wrongPasswordBody, err := io.ReadAll(wrongPassword.Body)
	assert.NoError(t, err)
	wrongPassword.Body.Close()

	unknownEmail := doJSON(t, app, http.MethodPost, "/login", map[string]string{
		"email":    "stranger@example.com",
		"password": "rightpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	unknownEmailBody, err := io.ReadAll(unknownEmail.Body)
	assert.NoError(t, err)
	unknownEmail.Body.Close()

	assert.Equal(t, string(wrongPasswordBody), string(unknownEmailBody))
	assert.Contains(t, string(wrongPasswordBody), "Invalid email or password")
}

func TestThoughtLifecycle(t *testing.T) {
	app := setupApp(t)
	userAID, tokenA := signupAndLogin(t, app, "owner@example.com", "password123")
	_, tokenB := signupAndLogin(t, app, "other@example.com", "password123")

	// Post a thought as user A.
	resp := doJSON(t, app, http.MethodPost, "/thoughts", map[string]string{
		"message": "hello world",
	}, tokenA)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "hello world", created["message"])
	assert.Equal(t, float64(0), created["hearts"])
	assert.Equal(t, userAID, created["createdBy"])
	thoughtID, _ := created["id"].(string)
	assert.NotEmpty(t, thoughtID)

	// It shows up in the public listing and by id.
	resp = doJSON(t, app, http.MethodGet, "/thoughts", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Thought
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	assert.Len(t, listed, 1)
	assert.Equal(t, models.ThoughtID(thoughtID), listed[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/thoughts/"+thoughtID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Anyone can like it; two likes are two hearts.
	resp = doJSON(t, app, http.MethodPost, "/thoughts/"+thoughtID+"/like", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/thoughts/"+thoughtID+"/like", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	liked := decodeBody(t, resp)
	assert.Equal(t, float64(2), liked["hearts"])

	// User B cannot edit or delete A's thought.
	resp = doJSON(t, app, http.MethodPatch, "/thoughts/"+thoughtID, map[string]string{
		"message": "hijacked thought",
	}, tokenB)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/thoughts/"+thoughtID, nil, tokenB)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// User A can edit, with the same 5-140 bounds as posting.
	resp = doJSON(t, app, http.MethodPatch, "/thoughts/"+thoughtID, map[string]string{
		"message": "hi",
	}, tokenA)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/thoughts/"+thoughtID, map[string]string{
		"message": "hello again world",
	}, tokenA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody(t, resp)
	assert.Equal(t, "hello again world", updated["message"])
	assert.Equal(t, float64(2), updated["hearts"])

	// And delete it.
	resp = doJSON(t, app, http.MethodDelete, "/thoughts/"+thoughtID, nil, tokenA)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decodeBody(t, resp)
	assert.Equal(t, true, deleted["success"])

	resp = doJSON(t, app, http.MethodGet, "/thoughts/"+thoughtID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := setupApp(t)
	payload := map[string]string{"message": "a valid thought message"}

	// No Authorization header.
	resp := doJSON(t, app, http.MethodPost, "/thoughts", payload, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Garbage token.
	resp = doJSON(t, app, http.MethodPost, "/thoughts", payload, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Token signed with the wrong secret.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forgedString, _ := forged.SignedString([]byte("some_other_secret"))
	resp = doJSON(t, app, http.MethodPost, "/thoughts", payload, forgedString)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Expired token with a valid signature.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	resp = doJSON(t, app, http.MethodPost, "/thoughts", payload, expiredString)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestMalformedThoughtID(t *testing.T) {
	app := setupApp(t)
	_, token := signupAndLogin(t, app, "ids@example.com", "password123")

	resp := doJSON(t, app, http.MethodGet, "/thoughts/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Malformed id", body["error"])

	resp = doJSON(t, app, http.MethodPost, "/thoughts/not-a-uuid/like", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/thoughts/not-a-uuid", map[string]string{
		"message": "a valid thought message",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/thoughts/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListCapAndOrdering(t *testing.T) {
	app := setupApp(t)
	_, token := signupAndLogin(t, app, "prolific@example.com", "password123")

	for i := 0; i < 25; i++ {
		resp := doJSON(t, app, http.MethodPost, "/thoughts", map[string]string{
			"message": fmt.Sprintf("thought number %02d of many", i),
		}, token)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
		// Keep creation timestamps strictly ordered.
		time.Sleep(2 * time.Millisecond)
	}

	resp := doJSON(t, app, http.MethodGet, "/thoughts", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Thought
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()

	assert.Len(t, listed, 20)
	assert.Equal(t, "thought number 24 of many", listed[0].Message)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt),
			"listing must be newest first")
	}
}
