package moderation

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
)

// Report statuses
const (
	StatusPending   = "pending"
	StatusResolved  = "resolved"
	StatusDismissed = "dismissed"
)

// Report reasons
const (
	ReasonSpam           = "spam"
	ReasonInappropriate  = "inappropriate"
	ReasonHarassment     = "harassment"
	ReasonMisinformation = "misinformation"
	ReasonOther          = "other"
)

var (
	Reasons     = []string{ReasonSpam, ReasonInappropriate, ReasonHarassment, ReasonMisinformation, ReasonOther}
	TargetTypes = []string{core.TargetArticle, core.TargetConfession, core.TargetComment, core.TargetUser}
)

type Report struct {
	ID          string      `json:"id"`
	ReporterID  string      `json:"reporter_id"`
	TargetType  string      `json:"target_type"`
	TargetID    string      `json:"target_id"`
	Reason      string      `json:"reason"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	ResolvedBy  null.String `json:"resolved_by"`
	ResolvedAt  null.Time   `json:"resolved_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (r Report) IsPending() bool { return r.Status == StatusPending }

type NewReport struct {
	TargetType  string `json:"target_type" validate:"required,report_target"`
	TargetID    string `json:"target_id" validate:"required"`
	Reason      string `json:"reason" validate:"required,report_reason"`
	Description string `json:"description" validate:"max=1000"`
}

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.TargetType = core.CleanString(nr.TargetType, true /* lower */)
	nr.TargetID = core.CleanString(nr.TargetID)
	nr.Reason = core.CleanString(nr.Reason, true /* lower */)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

type ReportFilter struct {
	Status     string `query:"status"`
	TargetType string `query:"target_type"`
	ReporterID string `query:"reporter_id"`
}

// AdminLog is an append-only record of a privileged action.
type AdminLog struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"admin_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

type LogFilter struct {
	AdminID    string `query:"admin_id"`
	Action     string `query:"action"`
	TargetType string `query:"target_type"`
	TargetID   string `query:"target_id"`
}
