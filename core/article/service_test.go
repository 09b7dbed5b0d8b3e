package article_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/storage/database/inmem"
	"github.com/Umairism/Teachers-Club/tests"
)

type env struct {
	svc          *article.Service
	comments     *comment.Service
	modSvc       *moderation.Service
	reactions    *reaction.Service
	reactionRepo reaction.Repository
	users        testutil.Users
}

func setup(t *testing.T, wrap ...func(article.Repository) article.Repository) env {
	db := inmemdb.Open()
	logger := testutil.NewLogger()
	modSvc := moderation.NewService(inmemdb.NewModerationRepository(db), logger)
	cmtSvc := comment.NewService(inmemdb.NewCommentRepository(db), modSvc, logger)
	var repo article.Repository = inmemdb.NewArticleRepository(db)
	for _, fn := range wrap {
		repo = fn(repo)
	}
	reactionRepo := inmemdb.NewReactionRepository(db)
	return env{
		svc:          article.NewService(repo, cmtSvc, modSvc, logger),
		comments:     cmtSvc,
		modSvc:       modSvc,
		reactions:    reaction.NewService(reactionRepo, logger),
		reactionRepo: reactionRepo,
		users:        testutil.CreateUsers(t, inmemdb.NewUserRepository(db)),
	}
}

// racingRepo counts a view and a like right before every write, as concurrent requests would.
type racingRepo struct {
	article.Repository
	likerID string
}

func (repo racingRepo) UpdateArticle(ctx context.Context, a article.Article) (article.Article, error) {
	if err := repo.IncrementViews(ctx, a.ID); err != nil {
		return article.Article{}, err
	}
	if _, err := repo.AddLike(ctx, a.ID, repo.likerID); err != nil {
		return article.Article{}, err
	}
	return repo.Repository.UpdateArticle(ctx, a)
}

func sPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		na         article.NewArticle
		wantStatus string
	}{
		{name: "teacher: default status", na: article.NewArticle{Title: "Fractions", Content: "Halves & quarters"}, wantStatus: article.StatusDraft},
		{
			name:       "teacher: published",
			na:         article.NewArticle{Title: "Fractions", Content: "Halves & quarters", Status: article.StatusPublished},
			wantStatus: article.StatusPublished,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := e.svc.Create(ctx, tt.na, e.users.Teacher)
			require.NoError(t, err)
			assert.NotEmpty(t, a.ID)
			assert.Equal(t, tt.wantStatus, a.Status)
			assert.Equal(t, tt.wantStatus == article.StatusPublished, a.PublishedAt.Valid)
			assert.Equal(t, "Halves & quarters", a.Excerpt)
			assert.Equal(t, e.users.Teacher.ID, a.Author.ID)
			assert.Equal(t, []string{}, a.Tags)
		})
	}

	for _, actor := range []string{"student", "moderator"} {
		t.Run(actor+" cannot create", func(t *testing.T) {
			usr := e.users.Student
			if actor == "moderator" {
				usr = e.users.Moderator
			}
			_, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, usr)
			assert.Equal(t, core.ErrPermissionDenied, err)
		})
	}
}

// A teacher writes a draft, publishes it, edits it; published_at never moves.
func TestService_publishScenario(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "Photosynthesis", Content: "Light in, sugar out."}, e.users.Teacher)
	require.NoError(t, err)
	require.Equal(t, article.StatusDraft, a.Status)
	require.False(t, a.PublishedAt.Valid)

	a, err = e.svc.Update(ctx, a.ID, article.UpdateArticle{Status: sPtr(article.StatusPublished)}, e.users.Teacher)
	require.NoError(t, err)
	assert.Equal(t, article.StatusPublished, a.Status)
	require.True(t, a.PublishedAt.Valid)
	publishedAt := a.PublishedAt.Time

	time.Sleep(5 * time.Millisecond)
	a, err = e.svc.Update(ctx, a.ID, article.UpdateArticle{Status: sPtr(article.StatusArchived)}, e.users.Teacher)
	require.NoError(t, err)
	a, err = e.svc.Update(ctx, a.ID, article.UpdateArticle{Status: sPtr(article.StatusPublished), Title: sPtr("Photosynthesis 101")}, e.users.Teacher)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis 101", a.Title)
	assert.True(t, a.PublishedAt.Time.Equal(publishedAt), "published_at moved from %v to %v", publishedAt, a.PublishedAt.Time)
	assert.True(t, a.UpdatedAt.After(publishedAt))

	published, err := e.svc.Query(ctx, &article.QueryFilter{Status: article.StatusPublished}, nil)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, a.ID, published[0].ID)

	// the teacher is not an admin: nothing audited
	logs, err := e.modSvc.QueryLogs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestService_GetByID_views(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C", Status: article.StatusPublished}, e.users.Teacher)
	require.NoError(t, err)

	_, err = e.svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got, err := e.svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Views+2, got.Views)

	// Get does not count
	got, err = e.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Views+2, got.Views)

	_, err = e.svc.GetByID(ctx, "nope")
	assert.Equal(t, article.ErrNotFound, errors.Cause(err))
}

func TestService_GetByID_comments(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)
	c1, err := e.comments.Create(ctx, comment.KindArticle, a.ID, comment.NewComment{Content: "first"}, e.users.Student)
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, comment.KindArticle, a.ID, comment.NewComment{Content: "reply", ParentID: c1.ID}, e.users.Teacher)
	require.NoError(t, err)

	got, err := e.svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "first", got.Comments[0].Content)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "reply", got.Comments[0].Replies[0].Content)
}

func TestService_Update(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		actor   string
		wantErr error
	}{
		{name: "student", id: a.ID, actor: "student", wantErr: core.ErrPermissionDenied},
		{name: "moderator", id: a.ID, actor: "moderator", wantErr: core.ErrPermissionDenied},
		{name: "not found", id: "nope", actor: "admin", wantErr: article.ErrNotFound},
		{name: "author", id: a.ID, actor: "teacher"},
		{name: "admin", id: a.ID, actor: "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := e.users.Admin
			switch tt.actor {
			case "student":
				actor = e.users.Student
			case "moderator":
				actor = e.users.Moderator
			case "teacher":
				actor = e.users.Teacher
			}
			got, err := e.svc.Update(ctx, tt.id, article.UpdateArticle{Content: sPtr("New content by " + tt.actor)}, actor)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "New content by "+tt.actor, got.Content)
			assert.Equal(t, got.Content, got.Excerpt)
			assert.Equal(t, e.users.Teacher.ID, got.AuthorID)
		})
	}

	logs, err := e.modSvc.QueryLogs(ctx, &moderation.LogFilter{Action: core.ActionUpdateArticle})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, e.users.Admin.ID, logs[0].AdminID)
	assert.Equal(t, a.ID, logs[0].TargetID)
}

func TestService_Delete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)
	cmt, err := e.comments.Create(ctx, comment.KindArticle, a.ID, comment.NewComment{Content: "nice"}, e.users.Student)
	require.NoError(t, err)
	_, err = e.reactions.Toggle(ctx, core.TargetArticle, a.ID, reaction.TypeThumbsUp, e.users.Student)
	require.NoError(t, err)
	_, err = e.reactions.Toggle(ctx, core.TargetComment, cmt.ID, reaction.TypeHeart, e.users.Teacher)
	require.NoError(t, err)

	// refused deletes leave the article untouched
	for _, actor := range []string{"student", "moderator"} {
		usr := e.users.Student
		if actor == "moderator" {
			usr = e.users.Moderator
		}
		ok, err := e.svc.Delete(ctx, a.ID, usr)
		require.NoError(t, err)
		assert.False(t, ok, actor)
	}
	_, err = e.svc.Get(ctx, a.ID)
	require.NoError(t, err)

	ok, err := e.svc.Delete(ctx, a.ID, e.users.Admin)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = e.svc.Get(ctx, a.ID)
	assert.Equal(t, article.ErrNotFound, errors.Cause(err))
	comments, err := e.comments.QueryAll(ctx, comment.KindArticle)
	require.NoError(t, err)
	assert.Empty(t, comments)
	for target, id := range map[string]string{core.TargetArticle: a.ID, core.TargetComment: cmt.ID} {
		counts, err := e.reactionRepo.CountReactions(ctx, target, id)
		require.NoError(t, err)
		assert.Empty(t, counts, "reactions on the %s are gone", target)
	}

	ok, err = e.svc.Delete(ctx, a.ID, e.users.Admin)
	require.NoError(t, err)
	assert.False(t, ok, "already deleted")

	logs, err := e.modSvc.QueryLogs(ctx, &moderation.LogFilter{Action: core.ActionDeleteArticle})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestService_Like(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)

	steps := []struct {
		name  string
		actor string
		like  bool
		want  int
	}{
		{name: "student likes", actor: "student", like: true, want: 1},
		{name: "student likes again", actor: "student", like: true, want: 1},
		{name: "student likes a third time", actor: "student", like: true, want: 1},
		{name: "teacher likes", actor: "teacher", like: true, want: 2},
		{name: "admin never liked", actor: "admin", want: 2},
		{name: "student unlikes", actor: "student", want: 1},
		{name: "student unlikes again", actor: "student", want: 1},
		{name: "teacher unlikes", actor: "teacher", want: 0},
		{name: "nobody left", actor: "teacher", want: 0},
	}
	for _, step := range steps {
		actor := e.users.Admin
		switch step.actor {
		case "student":
			actor = e.users.Student
		case "teacher":
			actor = e.users.Teacher
		}
		if step.like {
			a, err = e.svc.Like(ctx, a.ID, actor)
		} else {
			a, err = e.svc.Unlike(ctx, a.ID, actor)
		}
		require.NoError(t, err, step.name)
		assert.Equal(t, step.want, a.Likes, step.name)
	}

	inactive := e.users.Student
	inactive.IsActive = false
	_, err = e.svc.Like(ctx, a.ID, inactive)
	assert.Equal(t, core.ErrPermissionDenied, err)
	_, err = e.svc.Like(ctx, "nope", e.users.Student)
	assert.Equal(t, article.ErrNotFound, errors.Cause(err))
}

// Views and likes landing between the read and the write of an edit are kept.
func TestService_Update_keepsCounters(t *testing.T) {
	e := setup(t, func(repo article.Repository) article.Repository {
		return racingRepo{Repository: repo, likerID: "someone-else"}
	})
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)

	a, err = e.svc.Update(ctx, a.ID, article.UpdateArticle{Title: sPtr("Fractions")}, e.users.Teacher)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", a.Title)
	assert.Equal(t, 1, a.Views)
	assert.Equal(t, 1, a.Likes)

	a, err = e.svc.Moderate(ctx, a.ID, e.users.Moderator)
	require.NoError(t, err)
	assert.True(t, a.IsModerated)
	assert.Equal(t, 2, a.Views)
	assert.Equal(t, 1, a.Likes, "the same user liked twice")

	got, err := e.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, "Fractions", got.Title)
}

func TestService_Moderate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a, err := e.svc.Create(ctx, article.NewArticle{Title: "T", Content: "C"}, e.users.Teacher)
	require.NoError(t, err)

	_, err = e.svc.Moderate(ctx, a.ID, e.users.Teacher)
	assert.Equal(t, core.ErrPermissionDenied, err)

	a, err = e.svc.Moderate(ctx, a.ID, e.users.Moderator)
	require.NoError(t, err)
	assert.True(t, a.IsModerated)
	assert.Equal(t, e.users.Moderator.ID, a.ModeratedBy.String)
	assert.True(t, a.ModeratedAt.Valid)

	logs, err := e.modSvc.QueryLogs(ctx, &moderation.LogFilter{Action: core.ActionModerateArticle, TargetID: a.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestMakeExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 40) // 200 chars

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "short", content: "  A short   text ", want: "A short text"},
		{name: "cut at word", content: long, want: strings.TrimSpace(strings.Repeat("word ", 30)) + "..."},
		{name: "ends on a space", content: "a" + long, want: "a" + strings.TrimSpace(strings.Repeat("word ", 30)) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, article.MakeExcerpt(tt.content))
		})
	}
}
