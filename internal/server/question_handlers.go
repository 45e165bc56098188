package server

import (
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type voteRequest struct {
	VoteType models.VoteDirection `json:"voteType"`
}

// GetQuestions handles GET /api/questions
// @Summary List questions
// @Description Named listing over all questions, optionally narrowed by language and search text
// @Tags questions
// @Produce json
// @Param filter query string false "all, recent, popular, trending, unanswered, answered, my, followed"
// @Param language query string false "en, hi or both"
// @Param search query string false "Case-insensitive substring"
// @Param page query int false "Page (>= 1)"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} models.Envelope{data=[]models.Question}
// @Failure 400 {object} models.Envelope
// @Router /questions [get]
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	items, pagination, err := s.questionSvc.List(c.UserContext(), service.ListQuestionsInput{
		Filter:   c.Query("filter"),
		Language: c.Query("language"),
		Search:   c.Query("search"),
		Page:     page.Page,
		Limit:    page.Limit,
		ActorID:  currentUserID(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, items, pagination)
}

// GetQuestion handles GET /api/questions/:id
// @Summary Get question
// @Description Question with its answers; authenticated reads count as a view
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.Envelope{data=models.Question}
// @Failure 404 {object} models.Envelope
// @Router /questions/{id} [get]
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	q, err := s.questionSvc.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", q)
}

// CreateQuestion handles POST /api/questions
// @Summary Ask a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateQuestionInput true "Question"
// @Success 201 {object} models.Envelope{data=models.Question}
// @Failure 400 {object} models.Envelope
// @Router /questions [post]
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var req service.CreateQuestionInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.AuthorID = currentUserID(c)

	q, err := s.questionSvc.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Question created successfully", q)
}

// UpdateQuestion handles PUT /api/questions/:id
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body service.UpdateQuestionInput true "Changes"
// @Success 200 {object} models.Envelope{data=models.Question}
// @Failure 403 {object} models.Envelope
// @Router /questions/{id} [put]
func (s *Server) UpdateQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateQuestionInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.QuestionID = id
	req.ActorID = currentUserID(c)

	q, err := s.questionSvc.Update(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Question updated successfully", q)
}

// DeleteQuestion handles DELETE /api/questions/:id
// @Summary Delete question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /questions/{id} [delete]
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.questionSvc.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Question deleted successfully", nil)
}

// VoteQuestion handles POST /api/questions/:id/vote
// @Summary Vote on a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body voteRequest true "up or down"
// @Success 200 {object} models.Envelope{data=service.VoteOutcome}
// @Router /questions/{id}/vote [post]
func (s *Server) VoteQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req voteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	out, err := s.questionSvc.Vote(c.UserContext(), id, currentUserID(c), req.VoteType)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Vote recorded successfully", out)
}

// FollowQuestion handles POST /api/questions/:id/follow
// @Summary Follow or unfollow a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} models.Envelope{data=service.FollowOutcome}
// @Router /questions/{id}/follow [post]
func (s *Server) FollowQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	out, err := s.questionSvc.ToggleFollow(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	msg := "Question unfollowed"
	if out.Following {
		msg = "Question followed"
	}
	return models.Respond(c, fiber.StatusOK, msg, out)
}
