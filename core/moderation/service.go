package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("report not found")
	ErrTargetNotFound = errors.New("report target not found")
)

type (
	Repository interface {
		// TargetExists tells whether the reported user or content exists.
		TargetExists(ctx context.Context, targetType, targetID string) (bool, error)
		CreateReport(ctx context.Context, rep Report) (Report, error)
		GetReport(ctx context.Context, id string) (Report, error)
		// QueryReports returns the reports matching filter, newest first.
		QueryReports(ctx context.Context, filter *ReportFilter) ([]Report, error)
		UpdateReport(ctx context.Context, rep Report) (Report, error)
		CreateLog(ctx context.Context, log AdminLog) (AdminLog, error)
		// QueryLogs returns the admin logs matching filter, newest first.
		QueryLogs(ctx context.Context, filter *LogFilter) ([]AdminLog, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ core.Auditor = (*Service)(nil)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogAction appends an entry to the audit log. Failures are logged and swallowed.
func (svc *Service) LogAction(ctx context.Context, adminID, action, targetType, targetID, details string) {
	_, err := svc.repo.CreateLog(ctx, AdminLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("logging admin action %s: %v", action, err), err, map[string]interface{}{
			"admin_id":    adminID,
			"target_type": targetType,
			"target_id":   targetID,
		})
	}
}

func (svc *Service) QueryLogs(ctx context.Context, filter *LogFilter) ([]AdminLog, error) {
	return svc.repo.QueryLogs(ctx, filter)
}

// CreateReport files a report on an existing target. New reports are always pending.
func (svc *Service) CreateReport(ctx context.Context, nr NewReport, reporter user.User) (Report, error) {
	if !user.CanReport(reporter) {
		return Report{}, core.ErrPermissionDenied
	}
	exists, err := svc.repo.TargetExists(ctx, nr.TargetType, nr.TargetID)
	if err != nil {
		return Report{}, errors.Wrap(err, "checking report target")
	}
	if !exists {
		return Report{}, ErrTargetNotFound
	}
	rep, err := svc.repo.CreateReport(ctx, Report{
		ReporterID:  reporter.ID,
		TargetType:  nr.TargetType,
		TargetID:    nr.TargetID,
		Reason:      nr.Reason,
		Description: nr.Description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Report{}, errors.Wrap(err, "creating report")
	}
	return rep, nil
}

func (svc *Service) GetReport(ctx context.Context, id string) (Report, error) {
	return svc.repo.GetReport(ctx, id)
}

func (svc *Service) QueryReports(ctx context.Context, filter *ReportFilter) ([]Report, error) {
	return svc.repo.QueryReports(ctx, filter)
}

// ResolveReport closes a report as resolved or dismissed.
// Returns false if the report does not exist, the status is not a closing one or the actor may not resolve reports.
func (svc *Service) ResolveReport(ctx context.Context, id, status string, actor user.User) (bool, error) {
	var action string
	switch status {
	case StatusResolved:
		action = core.ActionResolveReport
	case StatusDismissed:
		action = core.ActionDismissReport
	default:
		return false, nil
	}
	if !user.CanResolveReports(actor) {
		return false, nil
	}

	rep, err := svc.repo.GetReport(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding report")
	}

	rep.Status = status
	rep.ResolvedBy = null.StringFrom(actor.ID)
	rep.ResolvedAt = null.TimeFrom(time.Now().UTC())
	if _, err = svc.repo.UpdateReport(ctx, rep); err != nil {
		return false, errors.Wrap(err, "updating report")
	}

	svc.LogAction(ctx, actor.ID, action, core.TargetReport, rep.ID, fmt.Sprintf("%s %s: %s", rep.TargetType, rep.TargetID, rep.Reason))
	return true, nil
}
