package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sportevents/backend/internal/model"
)

// Protected godoc
// @Summary Access-token check
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ProtectedResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/protected [get]
func Protected(c *gin.Context) {
	c.JSON(http.StatusOK, model.ProtectedResponse{
		Message: "Protected route",
		User:    GetAuthUser(c),
	})
}
