package moderation_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/storage/database/inmem"
	"github.com/Umairism/Teachers-Club/tests"
)

type env struct {
	svc       *moderation.Service
	users     testutil.Users
	articleID string
}

func setup(t *testing.T) env {
	db := inmemdb.Open()
	users := testutil.CreateUsers(t, inmemdb.NewUserRepository(db))
	a, err := inmemdb.NewArticleRepository(db).CreateArticle(context.Background(), article.Article{
		Title:    "Algebra",
		Content:  "Letters are numbers too.",
		Status:   article.StatusPublished,
		AuthorID: users.Teacher.ID,
	})
	require.NoError(t, err)
	return env{
		svc:       moderation.NewService(inmemdb.NewModerationRepository(db), testutil.NewLogger()),
		users:     users,
		articleID: a.ID,
	}
}

func TestService_CreateReport(t *testing.T) {
	e := setup(t)
	svc, users := e.svc, e.users
	ctx := context.Background()

	tests := []struct {
		name    string
		nr      moderation.NewReport
		wantErr error
	}{
		{name: "article", nr: moderation.NewReport{TargetType: core.TargetArticle, TargetID: e.articleID, Reason: moderation.ReasonSpam}},
		{name: "user", nr: moderation.NewReport{TargetType: core.TargetUser, TargetID: users.Teacher.ID, Reason: moderation.ReasonHarassment}},
		{name: "unknown article", nr: moderation.NewReport{TargetType: core.TargetArticle, TargetID: "a1", Reason: moderation.ReasonSpam}, wantErr: moderation.ErrTargetNotFound},
		{name: "unknown comment", nr: moderation.NewReport{TargetType: core.TargetComment, TargetID: "c1", Reason: moderation.ReasonSpam}, wantErr: moderation.ErrTargetNotFound},
		{name: "article id as a user", nr: moderation.NewReport{TargetType: core.TargetUser, TargetID: e.articleID, Reason: moderation.ReasonOther}, wantErr: moderation.ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := svc.CreateReport(ctx, tt.nr, users.Student)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, rep.ID)
			assert.Equal(t, moderation.StatusPending, rep.Status)
			assert.Equal(t, users.Student.ID, rep.ReporterID)
			assert.False(t, rep.ResolvedBy.Valid)
		})
	}

	reports, err := svc.QueryReports(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, reports, 2, "reports on missing targets are not filed")

	inactive := users.Student
	inactive.IsActive = false
	_, err = svc.CreateReport(ctx, moderation.NewReport{TargetType: core.TargetUser, TargetID: users.Teacher.ID, Reason: moderation.ReasonOther}, inactive)
	assert.Equal(t, core.ErrPermissionDenied, err)
}

func TestService_ResolveReport(t *testing.T) {
	e := setup(t)
	svc, users := e.svc, e.users
	ctx := context.Background()

	newReport := func() moderation.Report {
		rep, err := svc.CreateReport(ctx, moderation.NewReport{
			TargetType: core.TargetArticle,
			TargetID:   e.articleID,
			Reason:     moderation.ReasonMisinformation,
		}, users.Student)
		require.NoError(t, err)
		return rep
	}
	pending := newReport()

	tests := []struct {
		name       string
		id         string
		status     string
		actor      string
		want       bool
		wantAction string
	}{
		{name: "student", id: pending.ID, status: moderation.StatusResolved, actor: "student"},
		{name: "teacher", id: pending.ID, status: moderation.StatusResolved, actor: "teacher"},
		{name: "back to pending", id: pending.ID, status: moderation.StatusPending, actor: "moderator"},
		{name: "unknown status", id: pending.ID, status: "closed", actor: "moderator"},
		{name: "unknown report", id: "nope", status: moderation.StatusResolved, actor: "moderator"},
		{name: "moderator resolves", id: newReport().ID, status: moderation.StatusResolved, actor: "moderator", want: true, wantAction: core.ActionResolveReport},
		{name: "admin dismisses", id: newReport().ID, status: moderation.StatusDismissed, actor: "admin", want: true, wantAction: core.ActionDismissReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := users.Admin
			switch tt.actor {
			case "student":
				actor = users.Student
			case "teacher":
				actor = users.Teacher
			case "moderator":
				actor = users.Moderator
			}

			ok, err := svc.ResolveReport(ctx, tt.id, tt.status, actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				return
			}

			rep, err := svc.GetReport(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.status, rep.Status)
			assert.Equal(t, actor.ID, rep.ResolvedBy.String)
			assert.True(t, rep.ResolvedAt.Valid)

			logs, err := svc.QueryLogs(ctx, &moderation.LogFilter{TargetID: tt.id})
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, tt.wantAction, logs[0].Action)
			assert.Equal(t, core.TargetReport, logs[0].TargetType)
			assert.Equal(t, actor.ID, logs[0].AdminID)
			assert.Equal(t, "article "+e.articleID+": misinformation", logs[0].Details)
		})
	}

	rep, err := svc.GetReport(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusPending, rep.Status)

	reports, err := svc.QueryReports(ctx, &moderation.ReportFilter{Status: moderation.StatusPending})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, pending.ID, reports[0].ID)
}

func TestService_QueryLogs(t *testing.T) {
	e := setup(t)
	svc, users := e.svc, e.users
	ctx := context.Background()

	svc.LogAction(ctx, users.Admin.ID, core.ActionDeleteUser, core.TargetUser, "u1", "")
	svc.LogAction(ctx, users.Moderator.ID, core.ActionDeleteComment, core.TargetComment, "c1", "")
	svc.LogAction(ctx, users.Admin.ID, core.ActionUpdateArticle, core.TargetArticle, "a1", "title")

	tests := []struct {
		name       string
		filter     *moderation.LogFilter
		wantAction []string
	}{
		{name: "all, newest first", wantAction: []string{core.ActionUpdateArticle, core.ActionDeleteComment, core.ActionDeleteUser}},
		{name: "by admin", filter: &moderation.LogFilter{AdminID: users.Admin.ID}, wantAction: []string{core.ActionUpdateArticle, core.ActionDeleteUser}},
		{name: "by target type", filter: &moderation.LogFilter{TargetType: core.TargetComment}, wantAction: []string{core.ActionDeleteComment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := svc.QueryLogs(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, len(logs))
			for i, l := range logs {
				got[i] = l.Action
			}
			assert.Equal(t, tt.wantAction, got)
		})
	}
}
