package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbetty/internal/models"
	"bitbetty/internal/repository"
	"bitbetty/internal/service"
)

type GuessHandler struct {
	Submission *service.SubmissionService
	Query      *service.QueryService
	// Limiter guards submissions; nil disables rate limiting.
	Limiter *RateLimiter
}

type guessListResponse struct {
	Guesses []models.Guess `json:"guesses"`
}

type guessEventsResponse struct {
	Events []models.GuessEvent `json:"events"`
}

func (h *GuessHandler) Register(r *gin.Engine) {
	submit := []gin.HandlerFunc{h.create}
	if h.Limiter != nil {
		submit = append([]gin.HandlerFunc{h.Limiter.Middleware()}, submit...)
	}
	r.POST("/guesses", submit...)
	r.GET("/guesses/:id", h.get)
	r.GET("/guesses/:id/events", h.events)
	r.GET("/users/:username/guesses", h.listByUser)
}

// @Summary Submit a guess
// @Description baseline_price accepts a JSON string or number; guessed_at is RFC 3339.
// @Tags guesses
// @Accept json
// @Produce json
// @Param body body service.SubmitGuessInput true "guess"
// @Success 201 {object} submitResponse
// @Failure 400 {object} messageResponse
// @Failure 429 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /guesses [post]
func (h *GuessHandler) create(c *gin.Context) {
	if h.Submission == nil {
		Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	var in service.SubmitGuessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := h.Submission.Submit(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submitResponse{Guess: item.ID, Message: "guess submitted"})
}

// @Summary Get a guess
// @Tags guesses
// @Produce json
// @Param id path string true "guess id"
// @Success 200 {object} models.Guess
// @Failure 404 {object} messageResponse
// @Router /guesses/{id} [get]
func (h *GuessHandler) get(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	item, err := h.Query.Guess(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Guess workflow journal
// @Tags guesses
// @Produce json
// @Param id path string true "guess id"
// @Success 200 {object} guessEventsResponse
// @Router /guesses/{id}/events [get]
func (h *GuessHandler) events(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	items, err := h.Query.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, guessEventsResponse{Events: items})
}

// @Summary List a user's guesses
// @Tags guesses
// @Produce json
// @Param username path string true "username"
// @Param resolved query bool false "filter by resolution state"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} guessListResponse
// @Router /users/{username}/guesses [get]
func (h *GuessHandler) listByUser(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	items, err := h.Query.UserGuesses(c.Request.Context(), repository.ListGuessesParams{
		Username: c.Param("username"),
		Resolved: boolQueryPtr(c, "resolved"),
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, guessListResponse{Guesses: items})
}
