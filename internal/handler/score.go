package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbetty/internal/service"
)

type ScoreHandler struct {
	Query *service.QueryService
}

func (h *ScoreHandler) Register(r *gin.Engine) {
	r.GET("/scores/:username", h.get)
}

// @Summary Get a user's score
// @Description Sum of points over resolved guesses; 0 for unknown users.
// @Tags scores
// @Produce json
// @Param username path string true "username"
// @Success 200 {object} scoreResponse
// @Failure 500 {object} messageResponse
// @Router /scores/{username} [get]
func (h *ScoreHandler) get(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	score, err := h.Query.Score(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scoreResponse{Score: score})
}
