package authz

import (
	"fmt"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/cache"
	"github.com/taskhive-dev/taskhive/internal/store"
)

// Cache keys share the "team:<id>:" prefix so a single pattern
// invalidation clears every cached answer for a team.
func membershipKey(teamID, userID uint) string {
	return fmt.Sprintf("team:%d:member:%d", teamID, userID)
}

func ownershipKey(teamID, userID uint) string {
	return fmt.Sprintf("team:%d:owner:%d", teamID, userID)
}

func IsMember(teamID, userID uint) (bool, error) {
	return cache.GetOrCompute(membershipKey(teamID, userID), cache.DefaultTTL, func() (bool, error) {
		return store.IsMember(teamID, userID)
	})
}

func IsOwner(teamID, userID uint) (bool, error) {
	return cache.GetOrCompute(ownershipKey(teamID, userID), cache.DefaultTTL, func() (bool, error) {
		return store.IsOwner(teamID, userID)
	})
}

func RequireMember(teamID, userID uint) error {
	member, err := IsMember(teamID, userID)

	if err != nil {
		return err
	}

	if !member {
		return apperrors.NewAuthorization("You are not a member of this team")
	}

	return nil
}

func RequireOwner(teamID, userID uint) error {
	owner, err := IsOwner(teamID, userID)

	if err != nil {
		return err
	}

	if !owner {
		return apperrors.NewAuthorization("Only the team owner can perform this action")
	}

	return nil
}

// InvalidateMembership must be called after any mutation that changes a
// single user's standing in a team.
func InvalidateMembership(teamID, userID uint) {
	cache.Invalidate(membershipKey(teamID, userID))
	cache.Invalidate(ownershipKey(teamID, userID))
}

// InvalidateTeam clears every cached answer for a team, for mutations
// that affect all members at once (team deletion).
func InvalidateTeam(teamID uint) {
	cache.InvalidatePattern(fmt.Sprintf("team:%d:", teamID))
}
