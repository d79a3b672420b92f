package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateMeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	passwordHash, err := auth.HashPassword(req.Password)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		respondError(ctx, apperrors.NewDatabase(err))
		return
	}

	user, err := store.CreateUser(req.Name, req.Email, passwordHash)

	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		respondError(ctx, apperrors.NewDatabase(err))
		return
	}

	ctx.JSON(http.StatusCreated, types.Success(gin.H{
		"token": token,
		"user":  userResponse(user),
	}))
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := store.FindUserByEmail(req.Email)

	if err != nil {
		// Deliberately the same message as a wrong password, so the
		// response never reveals whether the account exists.
		if apperrors.IsKind(err, apperrors.NotFound) {
			respondError(ctx, apperrors.NewAuthentication("Invalid email or password"))
		} else {
			respondError(ctx, err)
		}
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondError(ctx, apperrors.NewAuthentication("Invalid email or password"))
		return
	}

	token, err := auth.GenerateJWT(user.ID)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		respondError(ctx, apperrors.NewDatabase(err))
		return
	}

	ctx.JSON(http.StatusOK, types.Success(gin.H{
		"token": token,
		"user":  userResponse(user),
	}))
}

// Me re-reads the user row, so a valid token for a deleted account
// yields 404 rather than a stale profile.
func Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	user, err := store.FindUserByID(userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success(gin.H{"user": userResponse(user)}))
}

func UpdateMe(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	var req UpdateMeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	patch := store.UserPatch{}

	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		patch.Name = &name
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		patch.Email = &email
	}

	user, err := store.UpdateUser(userID, patch)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.SuccessMessage("Profile updated", gin.H{"user": userResponse(user)}))
}
