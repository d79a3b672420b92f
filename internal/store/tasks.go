package store

import (
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
	Priority    string
	CreatorID   uint
	AssigneeID  *uint
	TeamID      *uint
}

// TaskPatch carries the fields a partial update provides. Nil means
// "leave unchanged"; gorm turns the resulting map into a deterministic
// parameterized UPDATE.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *uint
	TeamID      *uint
}

func (p TaskPatch) Updates() map[string]interface{} {
	updates := make(map[string]interface{})

	if p.Title != nil {
		updates["title"] = *p.Title
	}

	if p.Description != nil {
		updates["description"] = *p.Description
	}

	if p.Status != nil {
		updates["status"] = *p.Status
	}

	if p.Priority != nil {
		updates["priority"] = *p.Priority
	}

	if p.AssigneeID != nil {
		updates["assignee_id"] = *p.AssigneeID
	}

	if p.TeamID != nil {
		updates["team_id"] = *p.TeamID
	}

	return updates
}

func (p TaskPatch) Empty() bool {
	return len(p.Updates()) == 0
}

// TaskFilter is resolved by the orchestration layer: exactly one of
// TeamID, Status, Priority or Unassigned is set, or none for the
// unfiltered listing. UserID scopes every variant except the explicit
// team filter, whose membership check happens before the query runs.
type TaskFilter struct {
	TeamID     *uint
	Status     *string
	Priority   *string
	Unassigned bool
	UserID     uint
}

func CreateTask(params CreateTaskParams) (*models.Task, error) {
	task := models.Task{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		CreatorID:   &params.CreatorID,
		AssigneeID:  params.AssigneeID,
		TeamID:      params.TeamID,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		return nil, translate(err, "Task not found")
	}

	return &task, nil
}

func FindTaskByID(id uint) (*models.Task, error) {
	var task models.Task

	if err := db.DB.First(&task, id).Error; err != nil {
		return nil, translate(err, "Task not found")
	}

	return &task, nil
}

func ListTasks(filter TaskFilter, page, limit int) ([]models.Task, int64, error) {
	query := db.DB.Model(&models.Task{})

	switch {
	case filter.TeamID != nil:
		// Membership for an explicit team filter is enforced by the caller.
		query = query.Where("team_id = ?", *filter.TeamID)
	case filter.Status != nil:
		query = visibleTo(query, filter.UserID).Where("status = ?", *filter.Status)
	case filter.Priority != nil:
		query = visibleTo(query, filter.UserID).Where("priority = ?", *filter.Priority)
	case filter.Unassigned:
		// Legacy rows with no creator stay visible to everyone until claimed.
		query = query.Where("team_id IS NULL AND (creator_id = ? OR creator_id IS NULL)", filter.UserID)
	default:
		query = visibleTo(query, filter.UserID)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Task not found")
	}

	var tasks []models.Task

	err := query.Order("tasks.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error

	if err != nil {
		return nil, 0, translate(err, "Task not found")
	}

	return tasks, total, nil
}

// visibleTo restricts a task query to rows the user is allowed to see:
// tasks in teams they belong to, their own teamless tasks, and legacy
// teamless rows with no creator.
func visibleTo(query *gorm.DB, userID uint) *gorm.DB {
	memberOf := db.DB.Model(&models.TeamMembership{}).Select("team_id").Where("user_id = ?", userID)

	return query.Where("(team_id IN (?) OR (team_id IS NULL AND (creator_id = ? OR creator_id IS NULL)))", memberOf, userID)
}

// UpdateTask applies a partial update. An empty patch is a no-op that
// returns the current row untouched.
func UpdateTask(id uint, patch TaskPatch) (*models.Task, error) {
	task, err := FindTaskByID(id)

	if err != nil {
		return nil, err
	}

	updates := patch.Updates()

	if len(updates) == 0 {
		return task, nil
	}

	if err := db.DB.Model(task).Updates(updates).Error; err != nil {
		return nil, translate(err, "Task not found")
	}

	return FindTaskByID(id)
}

func DeleteTask(id uint) error {
	result := db.DB.Delete(&models.Task{}, id)

	if result.Error != nil {
		return translate(result.Error, "Task not found")
	}

	return nil
}
