package comment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("comment not found")
	ErrUnknownKind    = errors.New("unknown comment target")
	ErrTargetNotFound = errors.New("comment target not found")
	ErrInvalidParent  = errors.New("parent comment does not belong to this target")
)

type (
	// Repository stores article comments and confession comments apart; kind selects the store.
	Repository interface {
		TargetExists(ctx context.Context, kind, targetID string) (bool, error)
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		// GetComment returns the comment with its author attached.
		GetComment(ctx context.Context, kind, id string) (Comment, error)
		// QueryComments returns every comment of a target, oldest first, authors attached.
		QueryComments(ctx context.Context, kind, targetID string) ([]Comment, error)
		// QueryAllComments returns every comment of a kind (used by statistics).
		QueryAllComments(ctx context.Context, kind string) ([]Comment, error)
		// UpdateComment writes Comment.Content, Comment.IsModerated and Comment.UpdatedAt only.
		UpdateComment(ctx context.Context, c Comment) (Comment, error)
		// DeleteComment deletes the comment and its replies, with their likes and reactions.
		DeleteComment(ctx context.Context, kind, id string) (bool, error)
		// DeleteTargetComments deletes the comments of a target, with their likes and reactions.
		DeleteTargetComments(ctx context.Context, kind, targetID string) error
		// AddLike records the like of a user. Likes only grow the first time a user likes the comment.
		AddLike(ctx context.Context, kind, id, userID string) (Comment, error)
		// RemoveLike withdraws the like of a user. Likes only drop if the user liked the comment.
		RemoveLike(ctx context.Context, kind, id, userID string) (Comment, error)
	}

	Service struct {
		repo    Repository
		auditor core.Auditor
		logger  core.Logger
	}
)

func NewService(repo Repository, auditor core.Auditor, logger core.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// Create adds a comment to an article or a confession.
// Replies to a reply are attached to the root of the thread.
func (svc *Service) Create(ctx context.Context, kind, targetID string, nc NewComment, actor user.User) (Comment, error) {
	if !IsKind(kind) {
		return Comment{}, ErrUnknownKind
	}
	if !user.CanComment(actor) {
		return Comment{}, core.ErrPermissionDenied
	}
	exists, err := svc.repo.TargetExists(ctx, kind, targetID)
	if err != nil {
		return Comment{}, errors.Wrap(err, "checking comment target")
	}
	if !exists {
		return Comment{}, ErrTargetNotFound
	}

	now := time.Now().UTC()
	c := Comment{
		Kind:      kind,
		TargetID:  targetID,
		AuthorID:  actor.ID,
		Content:   nc.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nc.ParentID != "" {
		parent, err := svc.repo.GetComment(ctx, kind, nc.ParentID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Comment{}, core.NewFieldError("parent_id", ErrInvalidParent)
			}
			return Comment{}, errors.Wrap(err, "finding parent comment")
		}
		if parent.TargetID != targetID {
			return Comment{}, core.NewFieldError("parent_id", ErrInvalidParent)
		}
		if parent.IsReply() {
			parent.ID = parent.ParentID.String // one level deep only
		}
		c.ParentID = null.StringFrom(parent.ID)
	}

	c, err = svc.repo.CreateComment(ctx, c)
	if err != nil {
		return Comment{}, errors.Wrap(err, "creating comment")
	}
	c.Author = actor.AsAuthor()
	return c, nil
}

func (svc *Service) GetByID(ctx context.Context, kind, id string) (Comment, error) {
	if !IsKind(kind) {
		return Comment{}, ErrUnknownKind
	}
	return svc.repo.GetComment(ctx, kind, id)
}

// Thread returns the comments of a target as top-level comments with their replies, oldest first.
func (svc *Service) Thread(ctx context.Context, kind, targetID string) ([]Comment, error) {
	if !IsKind(kind) {
		return nil, ErrUnknownKind
	}
	comments, err := svc.repo.QueryComments(ctx, kind, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	return BuildThread(comments), nil
}

func (svc *Service) QueryAll(ctx context.Context, kind string) ([]Comment, error) {
	if !IsKind(kind) {
		return nil, ErrUnknownKind
	}
	return svc.repo.QueryAllComments(ctx, kind)
}

func (svc *Service) Update(ctx context.Context, kind, id string, uc UpdateComment, actor user.User) (Comment, error) {
	c, err := svc.GetByID(ctx, kind, id)
	if err != nil {
		return Comment{}, err
	}
	if !user.CanEditContent(actor, c.AuthorID) {
		return Comment{}, core.ErrPermissionDenied
	}
	c.Content = uc.Content
	c.UpdatedAt = time.Now().UTC()
	author := c.Author
	if c, err = svc.repo.UpdateComment(ctx, c); err != nil {
		return Comment{}, errors.Wrap(err, "updating comment")
	}
	c.Author = author

	if actor.IsAdmin() && actor.ID != c.AuthorID {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionUpdateComment, core.TargetComment, c.ID, kind+" "+c.TargetID)
	}
	return c, nil
}

// Delete removes a comment along with its replies.
// Returns false if the comment does not exist or the actor may not delete it.
func (svc *Service) Delete(ctx context.Context, kind, id string, actor user.User) (bool, error) {
	c, err := svc.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound || errors.Cause(err) == ErrUnknownKind {
			return false, nil
		}
		return false, errors.Wrap(err, "finding comment")
	}
	if !user.CanDeleteComment(actor, c.AuthorID) {
		return false, nil
	}

	deleted, err := svc.repo.DeleteComment(ctx, kind, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting comment")
	}
	if deleted && actor.ID != c.AuthorID && user.IsPrivileged(actor) {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionDeleteComment, core.TargetComment, id, kind+" "+c.TargetID)
	}
	return deleted, nil
}

// DeleteForTarget removes every comment of an article or a confession.
func (svc *Service) DeleteForTarget(ctx context.Context, kind, targetID string) error {
	if !IsKind(kind) {
		return ErrUnknownKind
	}
	if err := svc.repo.DeleteTargetComments(ctx, kind, targetID); err != nil {
		return errors.Wrap(err, "deleting comments")
	}
	return nil
}

// Like counts one like per user, liking twice changes nothing.
func (svc *Service) Like(ctx context.Context, kind, id string, actor user.User) (Comment, error) {
	return svc.setLike(ctx, kind, id, true, actor)
}

func (svc *Service) Unlike(ctx context.Context, kind, id string, actor user.User) (Comment, error) {
	return svc.setLike(ctx, kind, id, false, actor)
}

func (svc *Service) setLike(ctx context.Context, kind, id string, like bool, actor user.User) (Comment, error) {
	if !IsKind(kind) {
		return Comment{}, ErrUnknownKind
	}
	if !user.CanReact(actor) {
		return Comment{}, core.ErrPermissionDenied
	}
	if like {
		return svc.repo.AddLike(ctx, kind, id, actor.ID)
	}
	return svc.repo.RemoveLike(ctx, kind, id, actor.ID)
}
