package core

import "context"

// Audited actions
const (
	ActionCreateUser         = "CREATE_USER"
	ActionUpdateUser         = "UPDATE_USER"
	ActionDeleteUser         = "DELETE_USER"
	ActionUpdateArticle      = "UPDATE_ARTICLE"
	ActionDeleteArticle      = "DELETE_ARTICLE"
	ActionModerateArticle    = "MODERATE_ARTICLE"
	ActionUpdateConfession   = "UPDATE_CONFESSION"
	ActionDeleteConfession   = "DELETE_CONFESSION"
	ActionModerateConfession = "MODERATE_CONFESSION"
	ActionUpdateComment      = "UPDATE_COMMENT"
	ActionDeleteComment      = "DELETE_COMMENT"
	ActionResolveReport      = "RESOLVE_REPORT"
	ActionDismissReport      = "DISMISS_REPORT"
)

// Audit target types
const (
	TargetUser       = "user"
	TargetArticle    = "article"
	TargetConfession = "confession"
	TargetComment    = "comment"
	TargetReport     = "report"
)

// Auditor records privileged actions.
// LogAction is best-effort: it never fails the mutation it describes.
type Auditor interface {
	LogAction(ctx context.Context, adminID, action, targetType, targetID, details string)
}
