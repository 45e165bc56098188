package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// envelope mirrors models.Envelope with a raw payload for typed decoding.
type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Code       string              `json:"code"`
	Data       json.RawMessage     `json:"data"`
	Errors     []models.FieldError `json:"errors"`
	Pagination *models.Pagination  `json:"pagination"`
}

func (e envelope) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dst))
}

type testServer struct {
	*Server
	db  *gorm.DB
	app *fiber.App
}

// newTestServer builds a full app over a private SQLite database without Redis.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cache.SetClient(nil)

	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		Env:               "test",
		JWTSecret:         testSecret,
		JWTTTLHours:       1,
		BcryptCost:        4,
		AllowedOrigins:    "http://localhost:3000",
		ReputationEnabled: true,
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return &testServer{Server: s, db: db, app: s.App()}
}

// do sends a JSON request, optionally authenticated, and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type account struct {
	ID    uint
	Token string
}

// register signs up name with a derived email and returns its id and token.
func (ts *testServer) register(t *testing.T, name string) account {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var res struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	env.decode(t, &res)
	return account{ID: res.User.ID, Token: res.Token}
}

// ask posts the React authentication question as a.
func (ts *testServer) ask(t *testing.T, a account) uint {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/questions", a.Token, fiber.Map{
		"title":   "How to implement authentication in React?",
		"content": "I am building a React app and need to add login with JWT tokens.",
		"tags":    []string{"react", "authentication", "javascript"},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var q struct {
		ID uint `json:"id"`
	}
	env.decode(t, &q)
	return q.ID
}

// answer posts an answer to question as a.
func (ts *testServer) answer(t *testing.T, a account, question uint) uint {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/answers", a.Token, fiber.Map{
		"questionId": question,
		"content":    "Store the JWT in an httpOnly cookie and use a context provider.",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var ans struct {
		ID uint `json:"id"`
	}
	env.decode(t, &ans)
	return ans.ID
}
