package server

import (
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateAnswer handles POST /api/answers
// @Summary Answer a question
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateAnswerInput true "Answer"
// @Success 201 {object} models.Envelope{data=models.Answer}
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /answers [post]
func (s *Server) CreateAnswer(c *fiber.Ctx) error {
	var req service.CreateAnswerInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.AuthorID = currentUserID(c)

	a, err := s.answerSvc.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Answer created successfully", a)
}

// UpdateAnswer handles PUT /api/answers/:id
// @Summary Update answer
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Answer ID"
// @Param request body service.UpdateAnswerInput true "Changes"
// @Success 200 {object} models.Envelope{data=models.Answer}
// @Failure 403 {object} models.Envelope
// @Router /answers/{id} [put]
func (s *Server) UpdateAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateAnswerInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.AnswerID = id
	req.ActorID = currentUserID(c)

	a, err := s.answerSvc.Update(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Answer updated successfully", a)
}

// DeleteAnswer handles DELETE /api/answers/:id
// @Summary Delete answer
// @Tags answers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Answer ID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /answers/{id} [delete]
func (s *Server) DeleteAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.answerSvc.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Answer deleted successfully", nil)
}

// VoteAnswer handles POST /api/answers/:id/vote
// @Summary Vote on an answer
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Answer ID"
// @Param request body voteRequest true "up or down"
// @Success 200 {object} models.Envelope{data=service.VoteOutcome}
// @Router /answers/{id}/vote [post]
func (s *Server) VoteAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req voteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	out, err := s.answerSvc.Vote(c.UserContext(), id, currentUserID(c), req.VoteType)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Vote recorded successfully", out)
}

// AcceptAnswer handles POST /api/answers/:id/accept
// @Summary Accept an answer
// @Description Only the question author may accept; any previously accepted answer is cleared
// @Tags answers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Answer ID"
// @Success 200 {object} models.Envelope{data=models.Answer}
// @Failure 403 {object} models.Envelope
// @Router /answers/{id}/accept [post]
func (s *Server) AcceptAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	a, err := s.answerSvc.Accept(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Answer accepted successfully", a)
}

// UnacceptAnswer handles POST /api/answers/:id/unaccept
// @Summary Unaccept an answer
// @Tags answers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Answer ID"
// @Success 200 {object} models.Envelope{data=models.Answer}
// @Failure 403 {object} models.Envelope
// @Router /answers/{id}/unaccept [post]
func (s *Server) UnacceptAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	a, err := s.answerSvc.Unaccept(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Answer unaccepted successfully", a)
}
