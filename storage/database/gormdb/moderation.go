package gormdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core/moderation"
)

type moderationRepository struct {
	db *gorm.DB
}

var _ moderation.Repository = (*moderationRepository)(nil) // interface compliance check

func NewModerationRepository(db *gorm.DB) *moderationRepository {
	return &moderationRepository{db: db}
}

func (repo moderationRepository) TargetExists(ctx context.Context, targetType, targetID string) (bool, error) {
	return targetExists(ctx, repo.db, targetType, targetID)
}

func (repo moderationRepository) toReportModel(r moderation.Report) reportModel {
	return reportModel{
		ID:          r.ID,
		ReporterID:  r.ReporterID,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      r.Status,
		ResolvedBy:  stringPtr(r.ResolvedBy),
		ResolvedAt:  timePtr(r.ResolvedAt),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (repo moderationRepository) fromReportModel(m reportModel) moderation.Report {
	return moderation.Report{
		ID:          m.ID,
		ReporterID:  m.ReporterID,
		TargetType:  m.TargetType,
		TargetID:    m.TargetID,
		Reason:      m.Reason,
		Description: m.Description,
		Status:      m.Status,
		ResolvedBy:  nullString(m.ResolvedBy),
		ResolvedAt:  nullTime(m.ResolvedAt),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (repo moderationRepository) CreateReport(ctx context.Context, r moderation.Report) (moderation.Report, error) {
	r.ID = uuid.New().String()
	m := repo.toReportModel(r)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return moderation.Report{}, errors.Wrap(err, "inserting report")
	}
	return repo.fromReportModel(m), nil
}

func (repo moderationRepository) GetReport(ctx context.Context, id string) (moderation.Report, error) {
	var m reportModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return moderation.Report{}, moderation.ErrNotFound
		}
		return moderation.Report{}, errors.Wrap(err, "finding report")
	}
	return repo.fromReportModel(m), nil
}

func (repo moderationRepository) QueryReports(ctx context.Context, filter *moderation.ReportFilter) ([]moderation.Report, error) {
	q := repo.db.WithContext(ctx)
	if filter != nil {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.TargetType != "" {
			q = q.Where("target_type = ?", filter.TargetType)
		}
		if filter.ReporterID != "" {
			q = q.Where("reporter_id = ?", filter.ReporterID)
		}
	}

	var rows []reportModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	return lo.Map(rows, func(m reportModel, _ int) moderation.Report { return repo.fromReportModel(m) }), nil
}

func (repo moderationRepository) UpdateReport(ctx context.Context, r moderation.Report) (moderation.Report, error) {
	m := repo.toReportModel(r)
	res := repo.db.WithContext(ctx).Model(&reportModel{ID: r.ID}).Select("*").Updates(&m)
	if res.Error != nil {
		return moderation.Report{}, errors.Wrap(res.Error, "updating report")
	}
	if res.RowsAffected == 0 {
		return moderation.Report{}, moderation.ErrNotFound
	}
	return repo.fromReportModel(m), nil
}

func (repo moderationRepository) CreateLog(ctx context.Context, log moderation.AdminLog) (moderation.AdminLog, error) {
	log.ID = uuid.New().String()
	m := adminLogModel{
		ID:         log.ID,
		AdminID:    log.AdminID,
		Action:     log.Action,
		TargetType: log.TargetType,
		TargetID:   log.TargetID,
		Details:    log.Details,
		CreatedAt:  log.CreatedAt.UTC(),
	}
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return moderation.AdminLog{}, errors.Wrap(err, "inserting admin log")
	}
	return log, nil
}

func (repo moderationRepository) QueryLogs(ctx context.Context, filter *moderation.LogFilter) ([]moderation.AdminLog, error) {
	q := repo.db.WithContext(ctx)
	if filter != nil {
		if filter.AdminID != "" {
			q = q.Where("admin_id = ?", filter.AdminID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.TargetType != "" {
			q = q.Where("target_type = ?", filter.TargetType)
		}
		if filter.TargetID != "" {
			q = q.Where("target_id = ?", filter.TargetID)
		}
	}

	var rows []adminLogModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying admin logs")
	}
	return lo.Map(rows, func(m adminLogModel, _ int) moderation.AdminLog {
		return moderation.AdminLog{
			ID:         m.ID,
			AdminID:    m.AdminID,
			Action:     m.Action,
			TargetType: m.TargetType,
			TargetID:   m.TargetID,
			Details:    m.Details,
			CreatedAt:  m.CreatedAt.UTC(),
		}
	}), nil
}
