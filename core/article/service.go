package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

var ErrNotFound = errors.New("article not found")

type (
	Repository interface {
		CreateArticle(ctx context.Context, a Article) (Article, error)
		// GetArticle returns the article with its author attached.
		GetArticle(ctx context.Context, id string) (Article, error)
		// QueryArticles applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Article.Title, Article.Content or Article.Excerpt.
		QueryArticles(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Article, error)
		// UpdateArticle never writes Article.Likes nor Article.Views.
		UpdateArticle(ctx context.Context, a Article) (Article, error)
		// DeleteArticle also drops the likes and reactions left on the article.
		DeleteArticle(ctx context.Context, id string) (bool, error)
		// IncrementViews adds one view in place.
		IncrementViews(ctx context.Context, id string) error
		// AddLike records the like of a user. Likes only grow the first time a user likes the article.
		AddLike(ctx context.Context, id, userID string) (Article, error)
		// RemoveLike withdraws the like of a user. Likes only drop if the user liked the article.
		RemoveLike(ctx context.Context, id, userID string) (Article, error)
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

func (svc *Service) Create(ctx context.Context, na NewArticle, actor user.User) (Article, error) {
	if !user.CanCreateArticle(actor) {
		return Article{}, core.ErrPermissionDenied
	}

	now := time.Now().UTC()
	a := Article{
		Title:      na.Title,
		Content:    na.Content,
		Excerpt:    na.Excerpt,
		Category:   na.Category,
		Tags:       na.Tags,
		AuthorID:   actor.ID,
		IsFeatured: na.IsFeatured,
		ImageURL:   na.ImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if a.Excerpt == "" {
		a.Excerpt = MakeExcerpt(a.Content)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	status := na.Status
	if status == "" {
		status = StatusDraft
	}
	a.setStatus(status, now)

	a, err := svc.repo.CreateArticle(ctx, a)
	if err != nil {
		return Article{}, errors.Wrap(err, "creating article")
	}
	a.Author = actor.AsAuthor()
	return a, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Article, error) {
	return svc.repo.QueryArticles(ctx, filter, core.CleanOrdering(ordering, OrderingFields...))
}

// Get returns an article without counting a view.
func (svc *Service) Get(ctx context.Context, id string) (Article, error) {
	return svc.repo.GetArticle(ctx, id)
}

// GetByID counts a view then returns the article with its comments thread.
func (svc *Service) GetByID(ctx context.Context, id string) (Article, error) {
	if err := svc.repo.IncrementViews(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Article{}, err
		}
		return Article{}, errors.Wrap(err, "incrementing views")
	}
	a, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if a.Comments, err = svc.comments.Thread(ctx, comment.KindArticle, a.ID); err != nil {
		return Article{}, err
	}
	return a, nil
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateArticle, actor user.User) (Article, error) {
	a, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if !user.CanEditContent(actor, a.AuthorID) {
		return Article{}, core.ErrPermissionDenied
	}

	now := time.Now().UTC()
	changes := make([]string, 0, 4)
	if ua.Title != nil {
		a.Title = *ua.Title
		changes = append(changes, "title")
	}
	if ua.Content != nil {
		a.Content = *ua.Content
		changes = append(changes, "content")
		if ua.Excerpt == nil {
			a.Excerpt = MakeExcerpt(a.Content)
		}
	}
	if ua.Excerpt != nil {
		a.Excerpt = *ua.Excerpt
		if a.Excerpt == "" {
			a.Excerpt = MakeExcerpt(a.Content)
		}
		changes = append(changes, "excerpt")
	}
	if ua.Category != nil {
		a.Category = *ua.Category
		changes = append(changes, "category")
	}
	if ua.Tags != nil {
		a.Tags = ua.Tags
		changes = append(changes, "tags")
	}
	if ua.ImageURL != nil {
		a.ImageURL = *ua.ImageURL
		changes = append(changes, "image_url")
	}
	if ua.IsFeatured != nil {
		a.IsFeatured = *ua.IsFeatured
		changes = append(changes, "is_featured")
	}
	if ua.Status != nil && *ua.Status != a.Status {
		changes = append(changes, fmt.Sprintf("status=%s->%s", a.Status, *ua.Status))
		a.setStatus(*ua.Status, now)
	}
	a.UpdatedAt = now

	author := a.Author
	if a, err = svc.repo.UpdateArticle(ctx, a); err != nil {
		return Article{}, errors.Wrap(err, "updating article")
	}
	a.Author = author

	if actor.IsAdmin() {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionUpdateArticle, core.TargetArticle, a.ID, strings.Join(changes, ", "))
	}
	return a, nil
}

// Delete removes an article and its comments.
// Returns false if the article does not exist or the actor may not delete it.
func (svc *Service) Delete(ctx context.Context, id string, actor user.User) (bool, error) {
	a, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding article")
	}
	if !user.CanDeleteArticle(actor, a.AuthorID) {
		return false, nil
	}

	deleted, err := svc.repo.DeleteArticle(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting article")
	}
	if !deleted {
		return false, nil
	}
	if err = svc.comments.DeleteForTarget(ctx, comment.KindArticle, id); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting comments of article %s: %v", id, err), err)
	}
	if actor.IsAdmin() {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionDeleteArticle, core.TargetArticle, id, a.Title)
	}
	return true, nil
}

// Like counts one like per user, liking twice changes nothing.
func (svc *Service) Like(ctx context.Context, id string, actor user.User) (Article, error) {
	if !user.CanReact(actor) {
		return Article{}, core.ErrPermissionDenied
	}
	return svc.repo.AddLike(ctx, id, actor.ID)
}

func (svc *Service) Unlike(ctx context.Context, id string, actor user.User) (Article, error) {
	if !user.CanReact(actor) {
		return Article{}, core.ErrPermissionDenied
	}
	return svc.repo.RemoveLike(ctx, id, actor.ID)
}

// Moderate marks an article as reviewed by a moderator.
func (svc *Service) Moderate(ctx context.Context, id string, actor user.User) (Article, error) {
	a, err := svc.repo.GetArticle(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if !user.CanModerate(actor) {
		return Article{}, core.ErrPermissionDenied
	}

	now := time.Now().UTC()
	a.IsModerated = true
	a.ModeratedBy = null.StringFrom(actor.ID)
	a.ModeratedAt = null.TimeFrom(now)
	a.UpdatedAt = now

	author := a.Author
	if a, err = svc.repo.UpdateArticle(ctx, a); err != nil {
		return Article{}, errors.Wrap(err, "moderating article")
	}
	a.Author = author

	svc.auditor.LogAction(ctx, actor.ID, core.ActionModerateArticle, core.TargetArticle, a.ID, a.Title)
	return a, nil
}
