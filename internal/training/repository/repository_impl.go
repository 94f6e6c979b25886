package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/training/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.TrainingRecord) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return err
	}
	if len(record.Participants) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&record.Participants).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TrainingRecord, error) {
	var item domain.TrainingRecord
	err := db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("name asc, id asc")
		}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.TrainingRecord, error) {
	stmt := db.WithContext(ctx).Model(&domain.TrainingRecord{}).Preload("Participants")
	if filter.Topic != "" {
		stmt = stmt.Where("topic = ?", filter.Topic)
	}
	if filter.From != nil {
		stmt = stmt.Where("training_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("training_date <= ?", filter.To.UTC())
	}

	var items []domain.TrainingRecord
	if err := stmt.Order("training_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.TrainingRecord) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.TrainingRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"title":          record.Title,
			"topic":          record.Topic,
			"trainer":        record.Trainer,
			"training_date":  record.TrainingDate,
			"duration_hours": record.DurationHours,
			"notes":          record.Notes,
			"updated_at":     record.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	if err := db.WithContext(ctx).Where("training_id = ?", id).Delete(&domain.TrainingParticipant{}).Error; err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.TrainingRecord{})
	return res.RowsAffected, res.Error
}

func (r *repo) AddParticipant(ctx context.Context, db *gorm.DB, participant *domain.TrainingParticipant) error {
	if participant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(participant).Error
}

func (r *repo) FindParticipant(ctx context.Context, db *gorm.DB, trainingID, id snowflake.ID) (*domain.TrainingParticipant, error) {
	var item domain.TrainingParticipant
	err := db.WithContext(ctx).
		Where("training_id = ? AND id = ?", trainingID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) UpdateParticipant(ctx context.Context, db *gorm.DB, participant *domain.TrainingParticipant) error {
	if participant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.TrainingParticipant{}).
		Where("id = ?", participant.ID).
		Updates(map[string]any{
			"user_id":    participant.UserID,
			"name":       participant.Name,
			"passed":     participant.Passed,
			"notes":      participant.Notes,
			"updated_at": participant.UpdatedAt,
		}).Error
}

func (r *repo) DeleteParticipant(ctx context.Context, db *gorm.DB, trainingID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("training_id = ? AND id = ?", trainingID, id).
		Delete(&domain.TrainingParticipant{})
	return res.RowsAffected, res.Error
}
