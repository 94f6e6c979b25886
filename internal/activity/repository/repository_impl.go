package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/haccp/internal/activity/domain"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Entry, error) {
	cursor, err := filter.Page.Cursor()
	if err != nil {
		return nil, err
	}

	opts := []option.QueryOption{}
	for column, value := range map[string]string{
		"action":      filter.Action,
		"target_type": filter.TargetType,
		"target_id":   filter.TargetID,
		"actor_id":    filter.ActorID,
	} {
		if value = strings.TrimSpace(value); value != "" {
			opts = append(opts, option.ApplyOperator(option.Condition{Field: column, Operator: option.EQ, Value: value}))
		}
	}
	if filter.StartAt != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.GTE, Value: filter.StartAt.UTC()}))
	}
	if filter.EndAt != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.LTE, Value: filter.EndAt.UTC()}))
	}
	opts = append(opts, option.WithKeyset(cursor, filter.Page.Size()))

	stmt := db.WithContext(ctx).Model(&domain.Entry{})
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var entries []domain.Entry
	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
