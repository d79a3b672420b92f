package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetTeamID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "team_id", "Team")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "task_id", "Task")
}

func GetUserIDParam(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "user_id", "User")
}

func parseIDParam(ctx *gin.Context, name, label string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return uint(id), nil
}
