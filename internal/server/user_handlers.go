package server

import (
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/profile
// @Summary Own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=models.User}
// @Router /users/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", user)
}

// UpdateMyProfile handles PUT /api/users/profile
// @Summary Update own profile
// @Description Preferences are merged; omitted fields keep their value
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Changes"
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.Envelope
// @Router /users/profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile updated successfully", user)
}

// FollowTag handles POST /api/users/follow-tag
// @Summary Follow or unfollow a tag
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{tag=string} true "Tag"
// @Success 200 {object} models.Envelope{data=service.ToggleResult}
// @Router /users/follow-tag [post]
func (s *Server) FollowTag(c *fiber.Ctx) error {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.userService.ToggleFollowTag(c.UserContext(), currentUserID(c), req.Tag)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	msg := "Tag unfollowed"
	if res.Active {
		msg = "Tag followed"
	}
	return models.Respond(c, fiber.StatusOK, msg, res)
}

// BlockUser handles POST /api/users/block-user
// @Summary Block or unblock a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{userId=int} true "User"
// @Success 200 {object} models.Envelope{data=service.ToggleResult}
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /users/block-user [post]
func (s *Server) BlockUser(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.userService.ToggleBlockUser(c.UserContext(), currentUserID(c), req.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	msg := "User unblocked"
	if res.Active {
		msg = "User blocked"
	}
	return models.Respond(c, fiber.StatusOK, msg, res)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Envelope{data=models.Profile}
// @Failure 404 {object} models.Envelope
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetPublicProfile(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", profile)
}

// GetUserQuestions handles GET /api/users/:id/questions
// @Summary Questions by user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page (>= 1)"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} models.Envelope{data=[]models.Question}
// @Router /users/{id}/questions [get]
func (s *Server) GetUserQuestions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	items, pagination, err := s.userService.ListQuestions(c.UserContext(), id, page.Page, page.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, items, pagination)
}

// GetUserAnswers handles GET /api/users/:id/answers
// @Summary Answers by user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page (>= 1)"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} models.Envelope{data=[]models.Answer}
// @Router /users/{id}/answers [get]
func (s *Server) GetUserAnswers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	items, pagination, err := s.answerSvc.ListByAuthor(c.UserContext(), id, page.Page, page.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, items, pagination)
}
