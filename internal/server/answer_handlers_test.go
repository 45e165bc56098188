package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerBody struct {
	ID         uint   `json:"id"`
	Content    string `json:"content"`
	QuestionID uint   `json:"questionId"`
	IsAccepted bool   `json:"isAccepted"`
	Votes      int    `json:"votes"`
}

func TestCreateAnswer(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	q := ts.ask(t, john)

	status, env := ts.do(t, http.MethodPost, "/api/answers", jane.Token, fiber.Map{
		"questionId": q,
		"content":    "<p>Use a context provider</p><script>alert(1)</script>",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Answer created successfully", env.Message)
	var a answerBody
	env.decode(t, &a)
	assert.Equal(t, q, a.QuestionID)
	assert.NotContains(t, a.Content, "<script>")

	status, env = ts.do(t, http.MethodPost, "/api/answers", jane.Token, fiber.Map{
		"questionId": q,
		"content":    "A second answer from the same user.",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "You have already answered this question", env.Message)

	status, _ = ts.do(t, http.MethodPost, "/api/answers", jane.Token, fiber.Map{
		"questionId": 999,
		"content":    "Answering a question that does not exist.",
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodPost, "/api/answers", jane.Token, fiber.Map{"questionId": q, "content": "short"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = ts.do(t, http.MethodGet, "/api/notifications", john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"type":"answer"`)
}

func TestAcceptAndUnacceptAnswer(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	rahul := ts.register(t, "rahul")
	q := ts.ask(t, john)
	first := ts.answer(t, jane, q)
	second := ts.answer(t, rahul, q)

	status, env := ts.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", first), jane.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, env = ts.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", first), john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Answer accepted successfully", env.Message)
	var a answerBody
	env.decode(t, &a)
	assert.True(t, a.IsAccepted)

	status, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", second), john.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", q), "", nil)
	require.Equal(t, http.StatusOK, status)
	var full struct {
		AcceptedAnswer *uint        `json:"acceptedAnswer"`
		Answers        []answerBody `json:"answers"`
	}
	env.decode(t, &full)
	require.NotNil(t, full.AcceptedAnswer)
	assert.Equal(t, second, *full.AcceptedAnswer)
	accepted := 0
	for _, ans := range full.Answers {
		if ans.IsAccepted {
			accepted++
			assert.Equal(t, second, ans.ID)
		}
	}
	assert.Equal(t, 1, accepted)

	status, env = ts.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/unaccept", second), john.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Answer unaccepted successfully", env.Message)
	env.decode(t, &a)
	assert.False(t, a.IsAccepted)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", rahul.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"reputation":0`)
}

func TestVoteAnswer(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	q := ts.ask(t, john)
	a := ts.answer(t, jane, q)

	status, env := ts.do(t, http.MethodPost, fmt.Sprintf("/api/answers/%d/vote", a), john.Token, fiber.Map{"voteType": "up"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"userVote":"up"`)

	status, env = ts.do(t, http.MethodGet, "/api/auth/me", jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"reputation":2`)
}

func TestUpdateAndDeleteAnswer(t *testing.T) {
	ts := newTestServer(t)
	john := ts.register(t, "john")
	jane := ts.register(t, "jane")
	q := ts.ask(t, john)
	a := ts.answer(t, jane, q)
	path := fmt.Sprintf("/api/answers/%d", a)

	status, _ := ts.do(t, http.MethodPut, path, john.Token, fiber.Map{"content": "Rewritten by somebody else."})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := ts.do(t, http.MethodPut, path, jane.Token, fiber.Map{"content": "Use react-query together with a context provider."})
	require.Equal(t, http.StatusOK, status)
	var body answerBody
	env.decode(t, &body)
	assert.Equal(t, "Use react-query together with a context provider.", body.Content)

	status, _ = ts.do(t, http.MethodDelete, path, john.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ts.do(t, http.MethodDelete, path, jane.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Answer deleted successfully", env.Message)

	status, _ = ts.do(t, http.MethodDelete, path, jane.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
