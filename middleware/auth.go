package middleware

import (
	"fmt"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
)

const (
	userIDContextKey = "user_id"
	roleIDContextKey = "role_id"
)

// ValidateSessionToken guards a route group with the session-token header.
// The token must match a live session row; the owning user and role land in
// the context for downstream logging.
func ValidateSessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := c.GetHeader("session-token")
		if sessionToken == "" {
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventUnauthorizedAccess,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				Message:   fmt.Sprintf("Missing session token on %s", c.Request.URL.Path),
			})
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token is missing in 'session-token' header",
				Err: fmt.Errorf("session token required"),
			})
			c.Abort()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		var session model.Session
		err := db.Where("session_token = ? AND expires_at > ?", sessionToken, time.Now()).
			First(&session).Error
		if err != nil {
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventUnauthorizedAccess,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				Message:   "Session not found or expired",
			})
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session not found or has expired",
				Err: fmt.Errorf("invalid session token"),
			})
			c.Abort()
			return
		}

		var user model.User
		if err := db.First(&user, session.UserID).Error; err == nil {
			c.Set(userIDContextKey, user.ID)
			c.Set(roleIDContextKey, user.RoleID)
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user ID stored by ValidateSessionToken.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role ID, when known.
func GetRoleID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(roleIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
