package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func CreateTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	var req CreateTeamRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	team, err := store.CreateTeam(req.Name, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	// A "not a member" answer may have been cached for this user before
	// the team id was reused; clear the slate for the new team.
	authz.InvalidateTeam(team.ID)

	ctx.JSON(http.StatusCreated, types.Success(teamResponse(team)))
}

func ListTeams(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	page, limit := utils.ParsePagination(ctx)

	teams, total, err := store.ListTeamsForUser(userID, page, limit)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TeamResponse, 0, len(teams))

	for i := range teams {
		response = append(response, teamResponse(&teams[i]))
	}

	ctx.JSON(http.StatusOK, types.Paginated(response, types.NewPagination(page, limit, total)))
}

func GetTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	teamID, err := utils.GetTeamID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	if err := authz.RequireMember(teamID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	team, err := store.FindTeamWithMembers(teamID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success(teamWithMembersResponse(team)))
}

func AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	teamID, err := utils.GetTeamID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	var req AddMemberRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	if err := authz.RequireOwner(teamID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	newMember, err := store.FindUserByID(req.UserID)

	if err != nil {
		if apperrors.IsKind(err, apperrors.NotFound) {
			respondError(ctx, apperrors.NewValidation("User does not exist", nil))
		} else {
			respondError(ctx, err)
		}
		return
	}

	membership, err := store.AddMember(teamID, newMember.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	authz.InvalidateMembership(teamID, newMember.ID)

	ctx.JSON(http.StatusCreated, types.SuccessMessage("Member added", types.TeamMemberResponse{
		ID:       newMember.ID,
		Name:     newMember.Name,
		Email:    newMember.Email,
		Role:     membership.Role,
		JoinedAt: membership.CreatedAt,
	}))
}

func RemoveMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	teamID, err := utils.GetTeamID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	memberID, err := utils.GetUserIDParam(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	// The owner check comes first: a non-owner removing anyone, the
	// owner included, fails 403 before the self-removal rule applies.
	if err := authz.RequireOwner(teamID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	if err := store.RemoveMember(teamID, memberID); err != nil {
		respondError(ctx, err)
		return
	}

	authz.InvalidateMembership(teamID, memberID)

	ctx.JSON(http.StatusOK, types.SuccessMessage("Member removed", nil))
}

func DeleteTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	teamID, err := utils.GetTeamID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	if err := authz.RequireOwner(teamID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	if err := store.DeleteTeam(teamID); err != nil {
		respondError(ctx, err)
		return
	}

	authz.InvalidateTeam(teamID)

	ctx.JSON(http.StatusOK, types.SuccessMessage("Team deleted", nil))
}
