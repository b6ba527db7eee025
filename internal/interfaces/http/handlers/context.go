package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/shared/constants"
	"github.com/postforge/postforge/internal/shared/utils"
)

// requireUserID reads the authenticated user id set by the auth middleware
// and writes a 401 when it is missing.
func requireUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return 0, false
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return 0, false
	}
	return userID, true
}
