package reaction_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/storage/database/inmem"
	"github.com/Umairism/Teachers-Club/tests"
)

type env struct {
	svc       *reaction.Service
	users     testutil.Users
	articleID string
	commentID string
}

func setup(t *testing.T) env {
	ctx := context.Background()
	db := inmemdb.Open()
	users := testutil.CreateUsers(t, inmemdb.NewUserRepository(db))

	a, err := inmemdb.NewArticleRepository(db).CreateArticle(ctx, article.Article{
		Title:    "Geometry",
		Content:  "Triangles",
		Status:   article.StatusPublished,
		AuthorID: users.Teacher.ID,
	})
	require.NoError(t, err)
	c, err := inmemdb.NewCommentRepository(db).CreateComment(ctx, comment.Comment{
		Kind:     comment.KindArticle,
		TargetID: a.ID,
		AuthorID: users.Student.ID,
		Content:  "Pointy",
	})
	require.NoError(t, err)

	return env{
		svc:       reaction.NewService(inmemdb.NewReactionRepository(db), testutil.NewLogger()),
		users:     users,
		articleID: a.ID,
		commentID: c.ID,
	}
}

// heart on, heart off, then thumbs up: one reaction at a time per user and target.
func TestService_Toggle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	steps := []struct {
		name      string
		typ       string
		wantCount map[string]int
		wantUser  null.String
	}{
		{name: "add", typ: reaction.TypeHeart, wantCount: map[string]int{reaction.TypeHeart: 1}, wantUser: null.StringFrom(reaction.TypeHeart)},
		{name: "same type removes", typ: reaction.TypeHeart, wantCount: map[string]int{}},
		{name: "add again", typ: reaction.TypeHeart, wantCount: map[string]int{reaction.TypeHeart: 1}, wantUser: null.StringFrom(reaction.TypeHeart)},
		{name: "other type switches", typ: reaction.TypeThumbsUp, wantCount: map[string]int{reaction.TypeThumbsUp: 1}, wantUser: null.StringFrom(reaction.TypeThumbsUp)},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			sum, err := e.svc.Toggle(ctx, core.TargetArticle, e.articleID, step.typ, e.users.Student)
			require.NoError(t, err)

			total := 0
			for _, typ := range reaction.Types {
				assert.Equal(t, step.wantCount[typ], sum.Counts[typ], typ)
				total += step.wantCount[typ]
			}
			assert.Equal(t, total, sum.Total)
			assert.Equal(t, step.wantUser, sum.UserReaction)
		})
	}
}

func TestService_Toggle_manyUsers(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	for _, usr := range []struct {
		name string
		typ  string
	}{
		{"student", reaction.TypeHeart},
		{"teacher", reaction.TypeHeart},
		{"admin", reaction.TypeInsightful},
	} {
		actor := e.users.Admin
		switch usr.name {
		case "student":
			actor = e.users.Student
		case "teacher":
			actor = e.users.Teacher
		}
		_, err := e.svc.Toggle(ctx, core.TargetComment, e.commentID, usr.typ, actor)
		require.NoError(t, err)
	}

	sum, err := e.svc.Summary(ctx, core.TargetComment, e.commentID, e.users.Moderator.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Counts[reaction.TypeHeart])
	assert.Equal(t, 1, sum.Counts[reaction.TypeInsightful])
	assert.Equal(t, 0, sum.Counts[reaction.TypeBoring])
	assert.Equal(t, 3, sum.Total)
	assert.False(t, sum.UserReaction.Valid)

	sum, err = e.svc.Summary(ctx, core.TargetComment, e.commentID, e.users.Admin.ID)
	require.NoError(t, err)
	assert.Equal(t, reaction.TypeInsightful, sum.UserReaction.String)

	sum, err = e.svc.Summary(ctx, core.TargetComment, e.commentID, "")
	require.NoError(t, err)
	assert.False(t, sum.UserReaction.Valid)
}

func TestService_Toggle_invalid(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		targetType string
		targetID   string
		typ        string
		wantErr    error
		wantField  string
	}{
		{name: "unknown type", targetType: core.TargetArticle, targetID: e.articleID, typ: "angry", wantField: "type"},
		{name: "unknown target type", targetType: core.TargetUser, targetID: e.users.Teacher.ID, typ: reaction.TypeHeart, wantField: "target_type"},
		{name: "missing article", targetType: core.TargetArticle, targetID: "nope", typ: reaction.TypeHeart, wantErr: reaction.ErrTargetNotFound},
		{name: "missing confession", targetType: core.TargetConfession, targetID: e.articleID, typ: reaction.TypeHeart, wantErr: reaction.ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Toggle(ctx, tt.targetType, tt.targetID, tt.typ, e.users.Student)
			if tt.wantField != "" {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "error = %v", err)
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
				return
			}
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	inactive := e.users.Student
	inactive.IsActive = false
	_, err := e.svc.Toggle(ctx, core.TargetArticle, e.articleID, reaction.TypeHeart, inactive)
	assert.Equal(t, core.ErrPermissionDenied, err)
}
