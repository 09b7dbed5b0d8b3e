package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/user"
)

type Service struct {
	users       user.Repository
	articles    article.Repository
	confessions confession.Repository
	comments    comment.Repository
	logger      core.Logger
}

func NewService(
	users user.Repository,
	articles article.Repository,
	confessions confession.Repository,
	comments comment.Repository,
	logger core.Logger,
) *Service {
	return &Service{
		users:       users,
		articles:    articles,
		confessions: confessions,
		comments:    comments,
		logger:      logger,
	}
}

// Load reads the full collections the statistics are derived from.
func (svc *Service) Load(ctx context.Context) (Input, error) {
	var (
		in  Input
		err error
	)
	if in.Users, err = svc.users.QueryUsers(ctx, nil, nil); err != nil {
		return Input{}, errors.Wrap(err, "loading users")
	}
	if in.Articles, err = svc.articles.QueryArticles(ctx, nil, nil); err != nil {
		return Input{}, errors.Wrap(err, "loading articles")
	}
	if in.Confessions, err = svc.confessions.QueryConfessions(ctx, nil, nil); err != nil {
		return Input{}, errors.Wrap(err, "loading confessions")
	}
	if in.ArticleComments, err = svc.comments.QueryAllComments(ctx, comment.KindArticle); err != nil {
		return Input{}, errors.Wrap(err, "loading article comments")
	}
	if in.ConfessionComments, err = svc.comments.QueryAllComments(ctx, comment.KindConfession); err != nil {
		return Input{}, errors.Wrap(err, "loading confession comments")
	}
	return in, nil
}

// Snapshot computes fresh statistics.
func (svc *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	in, err := svc.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Compute(in, time.Now().UTC()), nil
}
