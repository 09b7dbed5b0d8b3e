package inmemdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/moderation"
)

type moderationRepository struct {
	db      *DB
	reports *reportTable
	logs    *adminLogTable
}

var _ moderation.Repository = (*moderationRepository)(nil) // interface compliance check

func NewModerationRepository(db *DB) *moderationRepository {
	return &moderationRepository{db: db, reports: db.report, logs: db.adminLog}
}

func (repo *moderationRepository) TargetExists(_ context.Context, targetType, targetID string) (bool, error) {
	return repo.db.targetExists(targetType, targetID), nil
}

func (repo *moderationRepository) CreateReport(_ context.Context, r moderation.Report) (moderation.Report, error) {
	repo.reports.Lock()
	defer repo.reports.Unlock()

	r.ID = uuid.New().String()
	stored := r
	repo.reports.table[r.ID] = &stored
	return r, nil
}

func (repo *moderationRepository) GetReport(_ context.Context, id string) (moderation.Report, error) {
	repo.reports.RLock()
	defer repo.reports.RUnlock()

	if r, ok := repo.reports.table[id]; ok {
		return *r, nil
	}
	return moderation.Report{}, moderation.ErrNotFound
}

func (repo *moderationRepository) QueryReports(_ context.Context, filter *moderation.ReportFilter) ([]moderation.Report, error) {
	repo.reports.RLock()
	reports := make([]moderation.Report, 0, len(repo.reports.table))
	for _, r := range repo.reports.table {
		reports = append(reports, *r)
	}
	repo.reports.RUnlock()

	if filter != nil {
		reports = lo.Filter(reports, func(r moderation.Report, _ int) bool {
			return (filter.Status == "" || r.Status == filter.Status) &&
				(filter.TargetType == "" || r.TargetType == filter.TargetType) &&
				(filter.ReporterID == "" || r.ReporterID == filter.ReporterID)
		})
	}
	sortByOrdering(reports, nil, core.DBOrdering{Field: "created_at"}, func(a, b moderation.Report, _ string) int {
		return compareTimes(a.CreatedAt, b.CreatedAt)
	})
	return reports, nil
}

func (repo *moderationRepository) UpdateReport(_ context.Context, r moderation.Report) (moderation.Report, error) {
	repo.reports.Lock()
	defer repo.reports.Unlock()

	if _, ok := repo.reports.table[r.ID]; !ok {
		return moderation.Report{}, moderation.ErrNotFound
	}
	stored := r
	repo.reports.table[r.ID] = &stored
	return r, nil
}

func (repo *moderationRepository) CreateLog(_ context.Context, log moderation.AdminLog) (moderation.AdminLog, error) {
	repo.logs.Lock()
	defer repo.logs.Unlock()

	log.ID = uuid.New().String()
	repo.logs.table = append(repo.logs.table, log)
	return log, nil
}

func (repo *moderationRepository) QueryLogs(_ context.Context, filter *moderation.LogFilter) ([]moderation.AdminLog, error) {
	repo.logs.RLock()
	logs := make([]moderation.AdminLog, len(repo.logs.table))
	copy(logs, repo.logs.table)
	repo.logs.RUnlock()

	if filter != nil {
		logs = lo.Filter(logs, func(l moderation.AdminLog, _ int) bool {
			return (filter.AdminID == "" || l.AdminID == filter.AdminID) &&
				(filter.Action == "" || l.Action == filter.Action) &&
				(filter.TargetType == "" || l.TargetType == filter.TargetType) &&
				(filter.TargetID == "" || l.TargetID == filter.TargetID)
		})
	}
	// logs are appended in order: newest first is the reverse, ties included
	return lo.Reverse(logs), nil
}
