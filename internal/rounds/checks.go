package rounds

import (
	"context"

	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

// requireAdmin is the Check of the virtual admin field that gates every
// admin endpoint.
func requireAdmin(_ context.Context, in params.Input, _ string, _ any) error {
	if !in.Principal.Authenticated() {
		return types.Unauthenticated("authentication required")
	}
	if !in.Principal.HasRole(types.RoleAdmin) {
		return types.Forbidden("admin role required")
	}
	return nil
}

// requireUser is the Check of the virtual principal field of endpoints that
// need a logged-in caller.
func requireUser(_ context.Context, in params.Input, _ string, _ any) error {
	if !in.Principal.Authenticated() {
		return types.Unauthenticated("authentication required")
	}
	return nil
}

// exists builds a Check that fails with not-found unless the named COUNT
// query matches the field's value.
func (s *Service) exists(queryName string) params.Check {
	return func(ctx context.Context, _ params.Input, field string, value any) error {
		found, err := s.store.Exists(ctx, queryName, value)
		if err != nil {
			return types.Internal(err)
		}
		if !found {
			return types.NotFound(field, "%s %v does not exist", field, value)
		}
		return nil
	}
}

// roomInRound checks that the room exists and belongs to the request's round.
func (s *Service) roomInRound(ctx context.Context, in params.Input, field string, value any) error {
	roundID, _ := in.Resolved.Int(fieldRoundID)
	found, err := s.store.Exists(ctx, "round-room-exists", value, roundID)
	if err != nil {
		return types.Internal(err)
	}
	if !found {
		return types.NotFound(field, "%s %v does not exist in round %d", field, value, roundID)
	}
	return nil
}

// unusedContestID checks that a requested new contest identifier is free.
// Keeping the current identifier is always allowed.
func (s *Service) unusedContestID(ctx context.Context, in params.Input, field string, value any) error {
	current, _ := in.Resolved.Int(fieldContestID)
	if value.(int64) == current {
		return nil
	}
	taken, err := s.store.Exists(ctx, "contest-exists", value)
	if err != nil {
		return types.Internal(err)
	}
	if taken {
		return types.InvalidArgument(field, "%s %v already exists", field, value)
	}
	return nil
}
