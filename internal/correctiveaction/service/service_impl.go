package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Compliance *config.ComplianceConfigHolder
	Repo       domain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	compliance *config.ComplianceConfigHolder
	repo       domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("correctiveaction.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		compliance: p.Compliance,
		repo:       p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.CorrectiveAction, error) {
	filter := domain.ListRequest{
		From:    req.From,
		To:      req.To,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}
	if req.Status != "" {
		status, ok := domain.ParseStatus(string(req.Status))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if req.Priority != "" {
		priority, ok := domain.ParsePriority(string(req.Priority))
		if !ok {
			return nil, domain.ErrInvalidPriority
		}
		filter.Priority = priority
	}
	filter.SourceType = strings.ToLower(strings.TrimSpace(req.SourceType))

	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.CorrectiveAction, error) {
	actionID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, actionID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CorrectiveAction, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		parsed, ok := domain.ParsePriority(req.Priority)
		if !ok {
			return nil, domain.ErrInvalidPriority
		}
		priority = parsed
	}

	ccpID, err := parseOptionalID(req.CCPID, domain.ErrInvalidCCP)
	if err != nil {
		return nil, err
	}
	assignedTo, err := parseOptionalID(req.AssignedTo, domain.ErrInvalidAssignee)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	dueDate := req.DueDate
	if dueDate == nil {
		if days := s.compliance.Get().CorrectiveAction.DueDaysFor(string(priority)); days > 0 {
			due := now.AddDate(0, 0, days)
			dueDate = &due
		}
	}

	item := &domain.CorrectiveAction{
		ID:                s.genID.Generate(),
		Title:             title,
		Description:       description,
		Cause:             trimmedPtr(req.Cause),
		ActionTaken:       trimmedPtr(req.ActionTaken),
		Status:            domain.StatusOpen,
		Priority:          priority,
		CCPID:             ccpID,
		AssignedTo:        assignedTo,
		DueDate:           dueDate,
		VerificationNotes: trimmedPtr(req.VerificationNotes),
		CreatedBy:         usercontext.RecordedBy(ctx),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.CorrectiveAction, error) {
	actionID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, actionID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, domain.ErrInvalidDescription
		}
		item.Description = description
	}
	if req.Cause != nil {
		item.Cause = trimmedPtr(req.Cause)
	}
	if req.ActionTaken != nil {
		item.ActionTaken = trimmedPtr(req.ActionTaken)
	}
	if req.VerificationNotes != nil {
		item.VerificationNotes = trimmedPtr(req.VerificationNotes)
	}
	if req.DueDate != nil {
		item.DueDate = req.DueDate
	}
	if req.Priority != nil {
		priority, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			return nil, domain.ErrInvalidPriority
		}
		item.Priority = priority
	}
	if req.AssignedTo != nil {
		assignedTo, err := parseOptionalID(req.AssignedTo, domain.ErrInvalidAssignee)
		if err != nil {
			return nil, err
		}
		item.AssignedTo = assignedTo
	}

	now := s.clock.Now().UTC()
	if req.Status != nil {
		next, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		if !domain.CanTransition(item.Status, next) {
			return nil, domain.ErrInvalidTransition
		}
		if next == domain.StatusCompleted && item.Status != domain.StatusCompleted {
			item.CompletedAt = &now
		}
		item.Status = next
	}

	item.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("corrective action updated",
		zap.String("corrective_action_id", item.ID.String()),
		zap.String("status", string(item.Status)),
	)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actionID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, s.db, actionID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func parseOptionalID(value *string, invalidErr error) (*snowflake.ID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := parseID(*value, invalidErr)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

