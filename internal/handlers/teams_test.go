package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func teamColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "name", "owner_id"}
}

func membershipColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "user_id", "team_id", "role"}
}

func TestCreateTeam(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "team_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	recorder := doRequest(t, r, "POST", "/api/teams", tokenFor(t, 42), map[string]string{
		"name": "Eng",
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	assert.Equal(t, "Eng", data["name"])
	assert.Equal(t, float64(42), data["owner_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTeamRequiresName(t *testing.T) {
	r, _ := newTestRouter(t)

	recorder := doRequest(t, r, "POST", "/api/teams", tokenFor(t, 42), map[string]string{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetTeamForbiddenForNonMember(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(0))

	recorder := doRequest(t, r, "GET", "/api/teams/1", tokenFor(t, 7), nil)

	require.Equal(t, http.StatusForbidden, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTeamReturnsMembers(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))

	mock.ExpectQuery(`SELECT (.+) FROM "teams"`).
		WillReturnRows(sqlmock.NewRows(teamColumns()).AddRow(1, now, now, nil, "Eng", 42))

	memberships := sqlmock.NewRows(membershipColumns()).
		AddRow(10, now, now, nil, 42, 1, types.RoleOwner).
		AddRow(11, now, now, nil, 7, 1, types.RoleMember)
	mock.ExpectQuery(`SELECT (.+) FROM "team_members"`).WillReturnRows(memberships)

	users := userRows(42, "Alice", "alice@example.com", "hash").
		AddRow(7, now, now, nil, "Bob", "bob@example.com", "hash")
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnRows(users)

	recorder := doRequest(t, r, "GET", "/api/teams/1", tokenFor(t, 7), nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	members := data["members"].([]interface{})
	assert.Len(t, members, 2)
	assert.NotContains(t, recorder.Body.String(), "password_hash")
}

func TestAddMemberRequiresOwnership(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(0))

	recorder := doRequest(t, r, "POST", "/api/teams/1/members", tokenFor(t, 7), map[string]interface{}{
		"user_id": 8,
	})

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMember(t *testing.T) {
	r, mock := newTestRouter(t)

	// Ownership check, user lookup, duplicate check, insert.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(userRows(8, "Bob", "bob@example.com", "hash"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "team_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	recorder := doRequest(t, r, "POST", "/api/teams/1/members", tokenFor(t, 42), map[string]interface{}{
		"user_id": 8,
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	assert.Equal(t, float64(8), data["id"])
	assert.Equal(t, types.RoleMember, data["role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberAlreadyInTeam(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(userRows(8, "Bob", "bob@example.com", "hash"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))

	recorder := doRequest(t, r, "POST", "/api/teams/1/members", tokenFor(t, 42), map[string]interface{}{
		"user_id": 8,
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRemoveMemberOwnerCheckComesFirst(t *testing.T) {
	r, mock := newTestRouter(t)

	// Bob (not the owner) tries to remove the owner: the ownership
	// check fails before the self-removal rule is ever consulted.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(0))

	recorder := doRequest(t, r, "DELETE", "/api/teams/1/members/42", tokenFor(t, 7), nil)

	require.Equal(t, http.StatusForbidden, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMemberOwnerCannotRemoveSelf(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))

	rows := sqlmock.NewRows(membershipColumns()).AddRow(10, now, now, nil, 42, 1, types.RoleOwner)
	mock.ExpectQuery(`SELECT (.+) FROM "team_members"`).WillReturnRows(rows)

	recorder := doRequest(t, r, "DELETE", "/api/teams/1/members/42", tokenFor(t, 42), nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMember(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(1))

	rows := sqlmock.NewRows(membershipColumns()).AddRow(11, now, now, nil, 8, 1, types.RoleMember)
	mock.ExpectQuery(`SELECT (.+) FROM "team_members"`).WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "team_members" SET "deleted_at"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	recorder := doRequest(t, r, "DELETE", "/api/teams/1/members/8", tokenFor(t, 42), nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTeamRequiresOwnership(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members"`).WillReturnRows(countRows(0))

	recorder := doRequest(t, r, "DELETE", "/api/teams/1", tokenFor(t, 7), nil)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestListTeams(t *testing.T) {
	r, mock := newTestRouter(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "teams"`).
		WillReturnRows(sqlmock.NewRows(teamColumns()).AddRow(1, now, now, nil, "Eng", 42))

	recorder := doRequest(t, r, "GET", "/api/teams", tokenFor(t, 42), nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	teams := body["data"].([]interface{})
	assert.Len(t, teams, 1)

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
}
