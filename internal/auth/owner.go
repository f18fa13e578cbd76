package auth

import "context"

// EnsureTrainerAccess verifies the caller may read data of trainerID.
// Admins read every trainer, trainers only themselves. Requests without an
// identity (auth disabled) pass.
func EnsureTrainerAccess(ctx context.Context, trainerID string) error {
	role := RoleFromContext(ctx)
	if role == "" {
		return nil
	}
	if RoleAtLeast(role, RoleAdmin) {
		return nil
	}
	if role == RoleTrainer && trainerID != "" && SubjectFromContext(ctx) == trainerID {
		return nil
	}
	return ErrForbidden
}
