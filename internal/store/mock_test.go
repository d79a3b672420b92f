package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gormDB

	t.Cleanup(func() {
		db.DB = nil
	})

	return mock
}

func taskColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "title", "description", "status", "priority", "creator_id", "assignee_id", "team_id"}
}

func taskRow(mockRows *sqlmock.Rows, id uint, title, status, priority string, creatorID, teamID interface{}) *sqlmock.Rows {
	now := time.Now()
	return mockRows.AddRow(id, now, now, nil, title, "", status, priority, creatorID, nil, teamID)
}
