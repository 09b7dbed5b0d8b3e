package reaction

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("reaction not found")
	ErrTargetNotFound    = errors.New("reaction target not found")
	ErrInvalidTargetType = errors.New("invalid reaction target")
	ErrInvalidType       = errors.New("invalid reaction type")
)

type (
	Repository interface {
		TargetExists(ctx context.Context, targetType, targetID string) (bool, error)
		// GetUserReaction returns ErrNotFound if the user has not reacted to the target.
		GetUserReaction(ctx context.Context, userID, targetType, targetID string) (Reaction, error)
		// CreateReaction fails when the user already reacted to the target.
		CreateReaction(ctx context.Context, r Reaction) (Reaction, error)
		UpdateReactionType(ctx context.Context, id, typ string) error
		DeleteReaction(ctx context.Context, id string) error
		// CountReactions counts the reactions of a target by type.
		CountReactions(ctx context.Context, targetType, targetID string) (map[string]int, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) validateTarget(ctx context.Context, targetType, targetID string) error {
	if !IsTargetType(targetType) {
		return core.NewFieldError("target_type", ErrInvalidTargetType)
	}
	exists, err := svc.repo.TargetExists(ctx, targetType, targetID)
	if err != nil {
		return errors.Wrap(err, "checking reaction target")
	}
	if !exists {
		return ErrTargetNotFound
	}
	return nil
}

// Summary counts the reactions of a target. UserReaction is set when callerID reacted to it.
func (svc *Service) Summary(ctx context.Context, targetType, targetID, callerID string) (Summary, error) {
	if err := svc.validateTarget(ctx, targetType, targetID); err != nil {
		return Summary{}, err
	}
	return svc.summary(ctx, targetType, targetID, callerID)
}

func (svc *Service) summary(ctx context.Context, targetType, targetID, callerID string) (Summary, error) {
	counts, err := svc.repo.CountReactions(ctx, targetType, targetID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting reactions")
	}
	sum := newSummary(counts)

	if callerID != "" {
		r, err := svc.repo.GetUserReaction(ctx, callerID, targetType, targetID)
		switch {
		case err == nil:
			sum.UserReaction = null.StringFrom(r.Type)
		case errors.Cause(err) != ErrNotFound:
			return Summary{}, errors.Wrap(err, "finding user reaction")
		}
	}
	return sum, nil
}

// Toggle adds the reaction when the user has none on the target, removes it when it is the same type
// and switches it otherwise. Returns the fresh summary.
//
// Toggle is a read-modify-write: two concurrent toggles of one user on one target race, the loser
// gets an error from the store's uniqueness check rather than a second reaction.
func (svc *Service) Toggle(ctx context.Context, targetType, targetID, typ string, actor user.User) (Summary, error) {
	if !user.CanReact(actor) {
		return Summary{}, core.ErrPermissionDenied
	}
	if !lo.Contains(Types, typ) {
		return Summary{}, core.NewFieldError("type", ErrInvalidType)
	}
	if err := svc.validateTarget(ctx, targetType, targetID); err != nil {
		return Summary{}, err
	}

	existing, err := svc.repo.GetUserReaction(ctx, actor.ID, targetType, targetID)
	switch {
	case err == nil && existing.Type == typ:
		if err = svc.repo.DeleteReaction(ctx, existing.ID); err != nil {
			return Summary{}, errors.Wrap(err, "deleting reaction")
		}
	case err == nil:
		if err = svc.repo.UpdateReactionType(ctx, existing.ID, typ); err != nil {
			return Summary{}, errors.Wrap(err, "updating reaction")
		}
	case errors.Cause(err) == ErrNotFound:
		_, err = svc.repo.CreateReaction(ctx, Reaction{
			UserID:     actor.ID,
			TargetType: targetType,
			TargetID:   targetID,
			Type:       typ,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return Summary{}, errors.Wrap(err, "creating reaction")
		}
	default:
		return Summary{}, errors.Wrap(err, "finding user reaction")
	}

	return svc.summary(ctx, targetType, targetID, actor.ID)
}
