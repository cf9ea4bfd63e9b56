package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const sessionLifetime = time.Hour

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Role   string `json:"role" example:"Admin"`
	UserID uint   `json:"user_id" example:"1"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func createJWTToken(user model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role_id": user.RoleID,
		"exp":     time.Now().Add(sessionLifetime).Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

func recordSession(db *gorm.DB, userID uint, token, ip, userAgent string) (model.Session, error) {
	session := model.Session{
		UserID:       userID,
		SessionToken: token,
		IP:           ip,
		UserAgent:    userAgent,
		ExpiresAt:    time.Now().Add(sessionLifetime),
	}
	err := db.Create(&session).Error
	return session, err
}

func fetchRoleName(db *gorm.DB, roleID uint) string {
	var role model.Role
	if err := db.First(&role, roleID).Error; err != nil {
		return ""
	}
	return role.Name
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password; returns a session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid credentials"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	ip := c.ClientIP()
	agent := c.Request.UserAgent()

	var user model.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.LogLoginFailure(req.Email, ip, agent, "user not found")
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("user not found")})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if !util.VerifyPassword(req.Password, user.Password) {
		util.LogLoginFailure(req.Email, ip, agent, "invalid password")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid password")})
		return
	}

	tokenString, err := createJWTToken(user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	session, err := recordSession(db, user.ID, tokenString, ip, agent)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	// Mirror the token into the per-user redis set (best-effort).
	_ = util.AddSessionToUserSet(session.UserID, tokenString)

	util.LogLoginSuccess(user.ID, user.Email, ip, agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: tokenString, Role: fetchRoleName(db, user.RoleID), UserID: user.ID},
	})
}

// Signup godoc
// @Summary      Register a user account
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup details"
// @Success      200 {object} util.APIResponse "User created"
// @Failure      400 {object} util.APIResponse "Invalid payload or email already exists"
// @Router       /signup [post]
func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var existing model.User
	err := db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		util.RespondServiceError(c, util.ConflictError("Email already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	user := model.User{
		Name:     util.NormalizeName(req.Name),
		Email:    req.Email,
		Password: util.HashPassword(req.Password),
	}
	if err := db.Create(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User created successfully", Data: map[string]interface{}{"user_id": user.ID}})
}

// Logout godoc
// @Summary      Log out
// @Description  Deletes the session row and removes the token from the redis set
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Session not found"
// @Router       /logout [post]
func Logout(c *gin.Context) {
	sessionToken := c.GetHeader("session-token")
	if sessionToken == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Session token is missing in 'session-token' header",
			Err: fmt.Errorf("session token required"),
		})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var session model.Session
	if err := db.Where("session_token = ?", sessionToken).First(&session).Error; err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}

	if err := db.Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}
	_ = util.RemoveSessionTokenFromUserSet(session.UserID, sessionToken)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful", Data: nil})
}

// ValidateToken godoc
// @Summary      Validate session token
// @Description  Checks that the session token exists and has not expired
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Valid session token"
// @Failure      401 {object} util.APIResponse "Invalid or expired session token"
// @Router       /token/validate [get]
func ValidateToken(c *gin.Context) {
	sessionToken := c.GetHeader("session-token")
	if sessionToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var result struct {
		model.Session
		Role string `json:"role"`
	}
	err := db.Table("sessions").
		Select("sessions.*, roles.name as role").
		Joins("JOIN users ON sessions.user_id = users.id").
		Joins("LEFT JOIN roles ON users.role_id = roles.id").
		Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", sessionToken, time.Now()).
		First(&result).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found"})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Valid session token", Data: result})
}
