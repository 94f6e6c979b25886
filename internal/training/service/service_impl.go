package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/training/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("training.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.TrainingRecord, error) {
	return s.repo.List(ctx, s.db, domain.ListFilter{
		From:  req.From,
		To:    req.To,
		Topic: strings.TrimSpace(req.Topic),
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.TrainingRecord, error) {
	trainingID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, trainingID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.TrainingRequest) (*domain.TrainingRecord, error) {
	title := trimmed(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	trainer := trimmed(req.Trainer)
	if trainer == "" {
		return nil, domain.ErrInvalidTrainer
	}
	if req.DurationHours != nil && !req.DurationHours.IsPositive() {
		return nil, domain.ErrInvalidDuration
	}

	now := s.clock.Now().UTC()
	trainingDate := now
	if req.TrainingDate != nil && !req.TrainingDate.IsZero() {
		trainingDate = req.TrainingDate.UTC()
	}

	record := &domain.TrainingRecord{
		ID:            s.genID.Generate(),
		Title:         title,
		Topic:         trimmedPtr(req.Topic),
		Trainer:       trainer,
		TrainingDate:  trainingDate,
		DurationHours: req.DurationHours,
		Notes:         trimmedPtr(req.Notes),
		CreatedBy:     usercontext.RecordedBy(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range req.Participants {
		participant, err := s.newParticipant(record.ID, line, now)
		if err != nil {
			return nil, err
		}
		record.Participants = append(record.Participants, *participant)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update changes the training itself; participants are managed through
// their own endpoints.
func (s *Service) Update(ctx context.Context, id string, req domain.TrainingRequest) (*domain.TrainingRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := setRequired(&record.Title, req.Title, domain.ErrInvalidTitle); err != nil {
		return nil, err
	}
	if err := setRequired(&record.Trainer, req.Trainer, domain.ErrInvalidTrainer); err != nil {
		return nil, err
	}
	if req.Topic != nil {
		record.Topic = trimmedPtr(req.Topic)
	}
	if req.TrainingDate != nil && !req.TrainingDate.IsZero() {
		record.TrainingDate = req.TrainingDate.UTC()
	}
	if req.DurationHours != nil {
		if !req.DurationHours.IsPositive() {
			return nil, domain.ErrInvalidDuration
		}
		record.DurationHours = req.DurationHours
	}
	if req.Notes != nil {
		record.Notes = trimmedPtr(req.Notes)
	}

	record.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	trainingID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	var rows int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = s.repo.Delete(ctx, tx, trainingID)
		return err
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) AddParticipant(ctx context.Context, trainingID string, req domain.ParticipantRequest) (*domain.TrainingParticipant, error) {
	record, err := s.Get(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	participant, err := s.newParticipant(record.ID, req, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddParticipant(ctx, s.db, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *Service) UpdateParticipant(ctx context.Context, trainingID, id string, req domain.ParticipantRequest) (*domain.TrainingParticipant, error) {
	participant, err := s.findParticipant(ctx, trainingID, id)
	if err != nil {
		return nil, err
	}

	if err := setRequired(&participant.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		userID, err := optionalID(req.UserID)
		if err != nil {
			return nil, err
		}
		participant.UserID = userID
	}
	if req.Passed != nil {
		participant.Passed = *req.Passed
	}
	if req.Notes != nil {
		participant.Notes = trimmedPtr(req.Notes)
	}

	participant.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.UpdateParticipant(ctx, s.db, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *Service) RemoveParticipant(ctx context.Context, trainingID, id string) error {
	parentID, err := parseID(trainingID, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	participantID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.repo.DeleteParticipant(ctx, s.db, parentID, participantID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) findParticipant(ctx context.Context, trainingID, id string) (*domain.TrainingParticipant, error) {
	parentID, err := parseID(trainingID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	participantID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindParticipant(ctx, s.db, parentID, participantID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) newParticipant(trainingID snowflake.ID, req domain.ParticipantRequest, now time.Time) (*domain.TrainingParticipant, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	userID, err := optionalID(req.UserID)
	if err != nil {
		return nil, err
	}
	passed := false
	if req.Passed != nil {
		passed = *req.Passed
	}
	return &domain.TrainingParticipant{
		ID:         s.genID.Generate(),
		TrainingID: trainingID,
		UserID:     userID,
		Name:       name,
		Passed:     passed,
		Notes:      trimmedPtr(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func optionalID(value *string) (*snowflake.ID, error) {
	v := trimmed(value)
	if v == "" {
		return nil, nil
	}
	id, err := parseID(v, domain.ErrInvalidUser)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func setRequired(target *string, value *string, invalidErr error) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return invalidErr
	}
	*target = v
	return nil
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func trimmedPtr(value *string) *string {
	v := trimmed(value)
	if v == "" {
		return nil
	}
	return &v
}
