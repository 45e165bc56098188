package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionBody struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	Language    string   `json:"language"`
	Votes       int      `json:"votes"`
	Views       int      `json:"views"`
	Followers   []uint   `json:"followers"`
	AnswerCount int      `json:"answerCount"`
	Author      *struct {
		Name string `json:"name"`
	} `json:"author"`
}

func TestCreateAndGetQuestion(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	id := ts.ask(t, john)

	status, env := ts.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", id), "", nil)
	require.Equal(t, http.StatusOK, status)

	var q questionBody
	env.decode(t, &q)
	assert.Equal(t, "How to implement authentication in React?", q.Title)
	assert.Equal(t, []string{"react", "authentication", "javascript"}, q.Tags)
	assert.Equal(t, "en", q.Language)
	require.NotNil(t, q.Author)
	assert.Equal(t, "john", q.Author.Name)
	assert.Zero(t, q.Views)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", id), john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(t, &q)
	assert.Equal(t, 1, q.Views)

	status, _ = ts.do(t, http.MethodGet, "/api/questions/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(t, http.MethodGet, "/api/questions/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateQuestion_Validation(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")

	status, env := ts.do(t, http.MethodPost, "/api/questions", john.Token, fiber.Map{
		"title":   "Too short",
		"content": "Tiny",
		"tags":    []string{},
	})
	require.Equal(t, http.StatusBadRequest, status)
	fields := map[string]bool{}
	for _, f := range env.Errors {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["content"])
	assert.True(t, fields["tags"])

	status, _ = ts.do(t, http.MethodPost, "/api/questions", "", fiber.Map{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetQuestions_Listing(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	first := ts.ask(t, john)
	ts.ask(t, jane)
	ts.answer(t, jane, first)

	status, env := ts.do(t, http.MethodGet, "/api/questions?filter=unanswered", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list []questionBody
	env.decode(t, &list)
	require.Len(t, list, 1)
	assert.NotEqual(t, first, list[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)

	status, env = ts.do(t, http.MethodGet, "/api/questions?filter=my", john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, 1, list[0].AnswerCount)
	assert.NotContains(t, string(env.Data), `"answers"`)

	status, env = ts.do(t, http.MethodGet, "/api/questions?filter=my", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(env.Data))

	status, env = ts.do(t, http.MethodGet, "/api/questions?page=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(t, &list)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, env.Pagination.Pages)

	status, _ = ts.do(t, http.MethodGet, "/api/questions?language=hi", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestGetQuestions_BadParameters(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/questions?filter=hot",
		"/api/questions?language=fr",
		"/api/questions?page=0",
		"/api/questions?limit=100",
	} {
		status, env := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "VALIDATION_ERROR", env.Code, path)
	}
}

func TestVoteQuestion(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	id := ts.ask(t, john)
	path := fmt.Sprintf("/api/questions/%d/vote", id)

	status, env := ts.do(t, http.MethodPost, path, jane.Token, fiber.Map{"voteType": "up"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Vote recorded successfully", env.Message)
	var out struct {
		Votes    int    `json:"votes"`
		Upvotes  []uint `json:"upvotes"`
		UserVote string `json:"userVote"`
	}
	env.decode(t, &out)
	assert.Equal(t, 1, out.Votes)
	assert.Equal(t, []uint{jane.ID}, out.Upvotes)
	assert.Equal(t, "up", out.UserVote)

	status, env = ts.do(t, http.MethodPost, path, jane.Token, fiber.Map{"voteType": "down"})
	require.Equal(t, http.StatusOK, status)
	env.decode(t, &out)
	assert.Equal(t, -1, out.Votes)
	assert.Empty(t, out.Upvotes)

	status, _ = ts.do(t, http.MethodPost, path, jane.Token, fiber.Map{"voteType": "sideways"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = ts.do(t, http.MethodGet, "/api/notifications/unread-count", john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"unreadCount":1}`, string(env.Data))
}

func TestFollowQuestion_Toggles(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	id := ts.ask(t, john)
	path := fmt.Sprintf("/api/questions/%d/follow", id)

	status, env := ts.do(t, http.MethodPost, path, jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Question followed", env.Message)
	assert.JSONEq(t, `{"following":true,"followersCount":1}`, string(env.Data))

	status, env = ts.do(t, http.MethodPost, path, jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Question unfollowed", env.Message)
	assert.JSONEq(t, `{"following":false,"followersCount":0}`, string(env.Data))
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	id := ts.ask(t, john)
	path := fmt.Sprintf("/api/questions/%d", id)

	status, env := ts.do(t, http.MethodPut, path, jane.Token, fiber.Map{"title": "Hijacked question title"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to update this question", env.Message)

	status, env = ts.do(t, http.MethodPut, path, john.Token, fiber.Map{
		"title": "How to implement authentication in React 18?",
		"tags":  []string{"React", "hooks"},
	})
	require.Equal(t, http.StatusOK, status)
	var q questionBody
	env.decode(t, &q)
	assert.Equal(t, "How to implement authentication in React 18?", q.Title)
	assert.Equal(t, []string{"react", "hooks"}, q.Tags)

	status, _ = ts.do(t, http.MethodDelete, path, jane.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ts.do(t, http.MethodDelete, path, john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Question deleted successfully", env.Message)

	status, _ = ts.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
