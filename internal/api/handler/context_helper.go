package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"dcms/internal/api/middleware"
	"dcms/pkg/response"
)

// MustGetUserID returns the caller id set by JWTAuth. When it is missing a
// 401 is written and ok is false; the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenInfo is the jti and remaining lifetime of the current access token.
func tokenInfo(c *gin.Context) (string, time.Duration) {
	return c.GetString(middleware.CtxTokenJTI), c.GetDuration(middleware.CtxTokenExp)
}
