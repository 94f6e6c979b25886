package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, action *domain.CorrectiveAction) error {
	if action == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(action).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CorrectiveAction, error) {
	var item domain.CorrectiveAction
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.CorrectiveAction, error) {
	var items []domain.CorrectiveAction
	stmt := db.WithContext(ctx).Model(&domain.CorrectiveAction{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		stmt = stmt.Where("priority = ?", filter.Priority)
	}
	if filter.SourceType != "" {
		stmt = stmt.Where("source_type = ?", filter.SourceType)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at <= ?", *filter.To)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"due_date":   true,
		"priority":   true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListBySource(ctx context.Context, db *gorm.DB, sourceType string, sourceID snowflake.ID) ([]domain.CorrectiveAction, error) {
	var items []domain.CorrectiveAction
	err := db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountOpenByPriority(ctx context.Context, db *gorm.DB) (map[domain.Priority]int64, error) {
	var rows []struct {
		Priority domain.Priority
		Total    int64
	}
	err := db.WithContext(ctx).
		Model(&domain.CorrectiveAction{}).
		Select("priority, COUNT(*) AS total").
		Where("status <> ?", domain.StatusCompleted).
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[domain.Priority]int64{
		domain.PriorityLow:      0,
		domain.PriorityMedium:   0,
		domain.PriorityHigh:     0,
		domain.PriorityCritical: 0,
	}
	for _, row := range rows {
		counts[row.Priority] = row.Total
	}
	return counts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, action *domain.CorrectiveAction) error {
	if action == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(action).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CorrectiveAction{})
	return res.RowsAffected, res.Error
}
