package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/hub"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssigneeID  *uint  `json:"assignee_id"`
	TeamID      *uint  `json:"team_id"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
	TeamID      *uint   `json:"team_id"`
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	filter, err := resolveTaskFilter(ctx, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	// A team-scoped listing is only served to members of that team.
	if filter.TeamID != nil {
		if err := authz.RequireMember(*filter.TeamID, userID); err != nil {
			respondError(ctx, err)
			return
		}
	}

	page, limit := utils.ParsePagination(ctx)

	tasks, total, err := store.ListTasks(filter, page, limit)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for i := range tasks {
		response = append(response, taskResponse(&tasks[i]))
	}

	ctx.JSON(http.StatusOK, types.Paginated(response, types.NewPagination(page, limit, total)))
}

// resolveTaskFilter picks exactly one filter from the query string.
// Team takes precedence, then status, then priority, then the
// "unassigned" listing; with nothing set the listing is unfiltered.
func resolveTaskFilter(ctx *gin.Context, userID uint) (store.TaskFilter, error) {
	filter := store.TaskFilter{UserID: userID}

	if raw := ctx.Query("team_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)

		if err != nil {
			return filter, apperrors.NewValidation("Invalid Team ID", map[string]string{"team_id": "Must be a numeric id"})
		}

		teamID := uint(parsed)
		filter.TeamID = &teamID
		return filter, nil
	}

	if status := ctx.Query("status"); status != "" {
		if !types.ValidStatus(status) {
			return filter, apperrors.NewValidation("Invalid status", map[string]string{"status": "Must be one of todo, in_progress, done"})
		}

		filter.Status = &status
		return filter, nil
	}

	if priority := ctx.Query("priority"); priority != "" {
		if !types.ValidPriority(priority) {
			return filter, apperrors.NewValidation("Invalid priority", map[string]string{"priority": "Must be one of low, medium, high"})
		}

		filter.Priority = &priority
		return filter, nil
	}

	if ctx.Query("unassigned") == "true" {
		filter.Unassigned = true
	}

	return filter, nil
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	var req CreateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	if req.Status == "" {
		req.Status = types.StatusTodo
	}

	if req.Priority == "" {
		req.Priority = types.PriorityMedium
	}

	if details := validateTaskEnums(&req.Status, &req.Priority); details != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", details))
		return
	}

	// Membership is checked before anything is written; a rejected
	// attempt leaves no task row behind.
	if req.TeamID != nil {
		if err := authz.RequireMember(*req.TeamID, userID); err != nil {
			respondError(ctx, err)
			return
		}
	}

	task, err := store.CreateTask(store.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatorID:   userID,
		AssigneeID:  req.AssigneeID,
		TeamID:      req.TeamID,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := taskResponse(task)
	hub.NotifyTaskCreated(response)

	ctx.JSON(http.StatusCreated, types.Success(response))
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", bindingDetails(err)))
		return
	}

	if details := validateTaskEnums(req.Status, req.Priority); details != nil {
		respondError(ctx, apperrors.NewValidation("Invalid request", details))
		return
	}

	task, err := store.FindTaskByID(taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := requireTaskAccess(task, userID); err != nil {
		respondError(ctx, err)
		return
	}

	// Moving a task into a team needs membership of the target team.
	if req.TeamID != nil && (task.TeamID == nil || *task.TeamID != *req.TeamID) {
		if err := authz.RequireMember(*req.TeamID, userID); err != nil {
			respondError(ctx, err)
			return
		}
	}

	updated, err := store.UpdateTask(taskID, store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		TeamID:      req.TeamID,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := taskResponse(updated)
	hub.NotifyTaskUpdated(response)

	ctx.JSON(http.StatusOK, types.Success(response))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewAuthentication("User not authenticated"))
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		respondError(ctx, apperrors.NewValidation(err.Error(), nil))
		return
	}

	task, err := store.FindTaskByID(taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := requireTaskAccess(task, userID); err != nil {
		respondError(ctx, err)
		return
	}

	// Capture before the delete; the row is gone afterwards and the
	// event still has to name its channel.
	deletedID := task.ID
	deletedTeamID := task.TeamID

	if err := store.DeleteTask(taskID); err != nil {
		respondError(ctx, err)
		return
	}

	hub.NotifyTaskDeleted(deletedID, deletedTeamID)

	ctx.JSON(http.StatusOK, types.SuccessMessage("Task deleted", nil))
}

// requireTaskAccess enforces task visibility: team tasks need
// membership, teamless tasks belong to their creator, and legacy rows
// with no creator are open to everyone.
func requireTaskAccess(task *models.Task, userID uint) error {
	if task.TeamID != nil {
		return authz.RequireMember(*task.TeamID, userID)
	}

	if task.CreatorID != nil && *task.CreatorID != userID {
		return apperrors.NewNotFound("Task not found")
	}

	return nil
}

func validateTaskEnums(status, priority *string) map[string]string {
	details := make(map[string]string)

	if status != nil && !types.ValidStatus(*status) {
		details["status"] = "Must be one of todo, in_progress, done"
	}

	if priority != nil && !types.ValidPriority(*priority) {
		details["priority"] = "Must be one of low, medium, high"
	}

	if len(details) == 0 {
		return nil
	}

	return details
}
