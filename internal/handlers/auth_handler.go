package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/auth"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderation"
	"github.com/vibecoder/backend/internal/repository"
)

type AuthHandler struct {
	userRepo   UserStore
	jwtService *auth.JWTService
	gate       *moderation.Gate
}

func NewAuthHandler(userRepo UserStore, jwtService *auth.JWTService, gate *moderation.Gate) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtService: jwtService,
		gate:       gate,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Nickname:  strings.TrimSpace(req.Nickname),
		AvatarURL: req.AvatarURL,
		Role:      models.RoleUser,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.gate.Require(c.Request.Context(), user.Nickname); err != nil {
		respondError(c, err)
		return
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	user.PasswordHash = hashedPassword

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, models.LoginResponse{
		AccessToken: token,
		User:        *user,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		User:        *user,
	})
}

// GetMe returns the current user
func (h *AuthHandler) GetMe(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe edits the caller's profile. Nickname and bio pass the keyword gate.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := activeUser(c, h.userRepo)
	if !ok {
		return
	}

	texts := []string{req.Nickname}
	if req.Bio != nil {
		texts = append(texts, *req.Bio)
	}
	if err := h.gate.Require(c.Request.Context(), texts...); err != nil {
		respondError(c, err)
		return
	}

	user.Nickname = strings.TrimSpace(req.Nickname)
	user.Bio = req.Bio
	user.AvatarURL = req.AvatarURL
	if err := h.userRepo.UpdateProfile(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
