package user

import (
	"github.com/gin-gonic/gin"

	"github.com/nurturelink/consult-api/internal/handler"
	"github.com/nurturelink/consult-api/internal/model"
	authService "github.com/nurturelink/consult-api/internal/service/auth"
	userService "github.com/nurturelink/consult-api/internal/service/user"
)

type Handler struct {
	authSvc authService.AuthServicer
	userSvc userService.UserServicer
}

func NewHandler(authSvc authService.AuthServicer, userSvc userService.UserServicer) *Handler {
	return &Handler{authSvc: authSvc, userSvc: userSvc}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	user := r.Group("/user")
	{
		user.POST("/signup", h.Signup)
		user.POST("/login", h.Login)
		user.POST("/refresh", h.Refresh)
		user.POST("/verify-email", h.VerifyEmail)
		user.POST("/resend-verification", h.ResendVerification)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a session.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	user := r.Group("/user")
	{
		user.POST("/logout", h.Logout)
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.DELETE("", h.DeleteAccount)

		// Admin variants addressing another account by id.
		user.GET("/profile/:id", h.GetProfileByID)
		user.PUT("/profile/:id", h.UpdateProfileByID)
		user.DELETE("/profile/:id", h.DeleteAccountByID)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	// Role of the caller, if any; admin signup is gated on it.
	creatorRole := handler.Role(c)

	session, err := h.authSvc.Signup(c.Request.Context(), &req, creatorRole)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "account created", session)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	session, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "logged in", session)
}

func (h *Handler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "logged out", nil)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "session refreshed", tokens)
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req model.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	if err := h.authSvc.VerifyEmail(c.Request.Context(), &req); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "email verified", nil)
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	if err := h.authSvc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "verification code sent", nil)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	profile, err := h.userSvc.GetProfile(c.Request.Context(), userID, userID, handler.Role(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "profile", profile)
}

func (h *Handler) GetProfileByID(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	targetID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	profile, err := h.userSvc.GetProfile(c.Request.Context(), callerID, targetID, handler.Role(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "profile", profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	profile, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, userID, handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "profile updated", profile)
}

func (h *Handler) UpdateProfileByID(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	targetID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	profile, err := h.userSvc.UpdateProfile(c.Request.Context(), callerID, targetID, handler.Role(c), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "profile updated", profile)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	if err := h.userSvc.DeleteAccount(c.Request.Context(), userID, userID, handler.Role(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "account deleted", nil)
}

func (h *Handler) DeleteAccountByID(c *gin.Context) {
	callerID, err := handler.UserID(c)
	if err != nil {
		handler.Error(c, err)
		return
	}
	targetID, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		handler.Error(c, err)
		return
	}

	if err := h.userSvc.DeleteAccount(c.Request.Context(), callerID, targetID, handler.Role(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, "account deleted", nil)
}
