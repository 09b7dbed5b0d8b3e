package confession

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

var ErrNotFound = errors.New("confession not found")

type (
	Repository interface {
		CreateConfession(ctx context.Context, c Confession) (Confession, error)
		// GetConfession returns the confession with its author attached.
		GetConfession(ctx context.Context, id string) (Confession, error)
		// QueryConfessions applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Confession.Content.
		QueryConfessions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Confession, error)
		// UpdateConfession never writes Confession.Likes.
		UpdateConfession(ctx context.Context, c Confession) (Confession, error)
		// DeleteConfession also drops the likes and reactions left on the confession.
		DeleteConfession(ctx context.Context, id string) (bool, error)
		// AddLike records the like of a user. Likes only grow the first time a user likes the confession.
		AddLike(ctx context.Context, id, userID string) (Confession, error)
		// RemoveLike withdraws the like of a user. Likes only drop if the user liked the confession.
		RemoveLike(ctx context.Context, id, userID string) (Confession, error)
	}

	Service struct {
		repo     Repository
		comments *comment.Service
		auditor  core.Auditor
		logger   core.Logger
	}
)

func NewService(repo Repository, comments *comment.Service, auditor core.Auditor, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		comments: comments,
		auditor:  auditor,
		logger:   logger,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewConfession, actor user.User) (Confession, error) {
	if !user.CanCreateConfession(actor) {
		return Confession{}, core.ErrPermissionDenied
	}

	now := time.Now().UTC()
	c := Confession{
		Content:     nc.Content,
		AuthorID:    actor.ID,
		IsAnonymous: nc.IsAnonymous,
		Category:    nc.Category,
		Tags:        nc.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Category == "" {
		c.Category = CategoryGeneral
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	c, err := svc.repo.CreateConfession(ctx, c)
	if err != nil {
		return Confession{}, errors.Wrap(err, "creating confession")
	}
	c.Author = actor.AsAuthor()
	c.mask()
	return c, nil
}

// Query lists confessions as seen by viewer.
// Filtering on someone else's confessions only matches the signed ones, unless viewer moderates content.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, viewer user.User) ([]Confession, error) {
	if filter != nil {
		filter.SignedOnly = filter.AuthorID != "" && filter.AuthorID != viewer.ID && !user.CanModerate(viewer)
	}
	confessions, err := svc.repo.QueryConfessions(ctx, filter, core.CleanOrdering(ordering, OrderingFields...))
	if err != nil {
		return nil, err
	}
	for i := range confessions {
		confessions[i].mask()
	}
	return confessions, nil
}

// GetByID returns the confession with its comments thread.
func (svc *Service) GetByID(ctx context.Context, id string) (Confession, error) {
	c, err := svc.repo.GetConfession(ctx, id)
	if err != nil {
		return Confession{}, err
	}
	if c.Comments, err = svc.comments.Thread(ctx, comment.KindConfession, c.ID); err != nil {
		return Confession{}, err
	}
	c.mask()
	return c, nil
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateConfession, actor user.User) (Confession, error) {
	c, err := svc.repo.GetConfession(ctx, id)
	if err != nil {
		return Confession{}, err
	}
	if !user.CanEditContent(actor, c.AuthorID) {
		return Confession{}, core.ErrPermissionDenied
	}

	changes := make([]string, 0, 4)
	if uc.Content != nil {
		c.Content = *uc.Content
		changes = append(changes, "content")
	}
	if uc.IsAnonymous != nil {
		c.IsAnonymous = *uc.IsAnonymous
		changes = append(changes, "is_anonymous")
	}
	if uc.Category != nil && *uc.Category != "" {
		c.Category = *uc.Category
		changes = append(changes, "category")
	}
	if uc.Tags != nil {
		c.Tags = uc.Tags
		changes = append(changes, "tags")
	}
	c.UpdatedAt = time.Now().UTC()

	author := c.Author
	if c, err = svc.repo.UpdateConfession(ctx, c); err != nil {
		return Confession{}, errors.Wrap(err, "updating confession")
	}
	c.Author = author
	c.mask()

	if actor.IsAdmin() {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionUpdateConfession, core.TargetConfession, c.ID, strings.Join(changes, ", "))
	}
	return c, nil
}

// Delete removes a confession and its comments.
// Returns false if the confession does not exist or the actor may not delete it.
func (svc *Service) Delete(ctx context.Context, id string, actor user.User) (bool, error) {
	c, err := svc.repo.GetConfession(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding confession")
	}
	if !user.CanDeleteConfession(actor, c.AuthorID) {
		return false, nil
	}

	deleted, err := svc.repo.DeleteConfession(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting confession")
	}
	if !deleted {
		return false, nil
	}
	if err = svc.comments.DeleteForTarget(ctx, comment.KindConfession, id); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting comments of confession %s: %v", id, err), err)
	}
	if actor.ID != c.AuthorID && user.IsPrivileged(actor) {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionDeleteConfession, core.TargetConfession, id, c.Category)
	}
	return true, nil
}

// Like counts one like per user, liking twice changes nothing.
func (svc *Service) Like(ctx context.Context, id string, actor user.User) (Confession, error) {
	return svc.setLike(ctx, id, true, actor)
}

func (svc *Service) Unlike(ctx context.Context, id string, actor user.User) (Confession, error) {
	return svc.setLike(ctx, id, false, actor)
}

func (svc *Service) setLike(ctx context.Context, id string, like bool, actor user.User) (Confession, error) {
	if !user.CanReact(actor) {
		return Confession{}, core.ErrPermissionDenied
	}
	var c Confession
	var err error
	if like {
		c, err = svc.repo.AddLike(ctx, id, actor.ID)
	} else {
		c, err = svc.repo.RemoveLike(ctx, id, actor.ID)
	}
	if err != nil {
		return Confession{}, err
	}
	c.mask()
	return c, nil
}

// Moderate marks a confession as reviewed by a moderator.
func (svc *Service) Moderate(ctx context.Context, id string, actor user.User) (Confession, error) {
	c, err := svc.repo.GetConfession(ctx, id)
	if err != nil {
		return Confession{}, err
	}
	if !user.CanModerate(actor) {
		return Confession{}, core.ErrPermissionDenied
	}

	c.IsModerated = true
	c.UpdatedAt = time.Now().UTC()
	author := c.Author
	if c, err = svc.repo.UpdateConfession(ctx, c); err != nil {
		return Confession{}, errors.Wrap(err, "moderating confession")
	}
	c.Author = author
	c.mask()

	svc.auditor.LogAction(ctx, actor.ID, core.ActionModerateConfession, core.TargetConfession, c.ID, "")
	return c, nil
}
