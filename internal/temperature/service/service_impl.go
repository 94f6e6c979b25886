package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/temperature/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Observer compliance.Observer
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	observer compliance.Observer
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("temperature.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		observer: p.Observer,
		repo:     p.Repo,
	}
}

func (s *Service) ListPoints(ctx context.Context, req domain.ListPointRequest) ([]domain.TemperaturePoint, error) {
	filter := domain.ListPointRequest{Active: req.Active}
	if value := strings.TrimSpace(req.Type); value != "" {
		pointType, ok := domain.ParsePointType(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		filter.Type = string(pointType)
	}
	return s.repo.ListPoints(ctx, s.db, filter)
}

func (s *Service) GetPoint(ctx context.Context, id string) (*domain.TemperaturePoint, error) {
	pointID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	point, err := s.repo.FindPointByID(ctx, s.db, pointID)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, domain.ErrNotFound
	}
	return point, nil
}

func (s *Service) CreatePoint(ctx context.Context, req domain.PointRequest) (*domain.TemperaturePoint, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	pointType := domain.PointOther
	if value := trimmed(req.Type); value != "" {
		parsed, ok := domain.ParsePointType(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		pointType = parsed
	}
	if req.MinTemp == nil || req.MaxTemp == nil || *req.MinTemp > *req.MaxTemp {
		return nil, domain.ErrInvalidLimits
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	point := &domain.TemperaturePoint{
		ID:        s.genID.Generate(),
		Name:      name,
		Location:  trimmedPtr(req.Location),
		Type:      pointType,
		MinTemp:   *req.MinTemp,
		MaxTemp:   *req.MaxTemp,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePoint(ctx, s.db, point); err != nil {
		return nil, err
	}
	return point, nil
}

// UpdatePoint changes the limits for future readings only; stored readings
// keep the verdict computed when they were written.
func (s *Service) UpdatePoint(ctx context.Context, id string, req domain.PointRequest) (*domain.TemperaturePoint, error) {
	point, err := s.GetPoint(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := trimmed(req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		point.Name = name
	}
	if req.Location != nil {
		point.Location = trimmedPtr(req.Location)
	}
	if req.Type != nil {
		pointType, ok := domain.ParsePointType(strings.ToUpper(trimmed(req.Type)))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		point.Type = pointType
	}
	if req.MinTemp != nil {
		point.MinTemp = *req.MinTemp
	}
	if req.MaxTemp != nil {
		point.MaxTemp = *req.MaxTemp
	}
	if point.MinTemp > point.MaxTemp {
		return nil, domain.ErrInvalidLimits
	}
	if req.Active != nil {
		point.Active = *req.Active
	}

	point.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.UpdatePoint(ctx, s.db, point); err != nil {
		return nil, err
	}
	return point, nil
}

func (s *Service) DeletePoint(ctx context.Context, id string) error {
	pointID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.repo.CountReadings(ctx, s.db, pointID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrPointInUse
	}
	rows, err := s.repo.DeletePoint(ctx, s.db, pointID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ListReadings(ctx context.Context, req domain.ListReadingRequest) ([]domain.TemperatureReading, error) {
	filter := domain.ListReadingRequest{
		IsCompliant: req.IsCompliant,
		From:        req.From,
		To:          req.To,
		Limit:       req.Limit,
	}
	if strings.TrimSpace(req.TemperaturePointID) != "" {
		pointID, err := parseID(req.TemperaturePointID, domain.ErrInvalidPoint)
		if err != nil {
			return nil, err
		}
		filter.PointID = pointID
	}
	return s.repo.ListReadings(ctx, s.db, filter)
}

func (s *Service) CreateReading(ctx context.Context, req domain.CreateReadingRequest) (*domain.CreateReadingResponse, error) {
	pointID, err := parseID(req.TemperaturePointID, domain.ErrInvalidPoint)
	if err != nil {
		return nil, err
	}
	if req.Temperature == nil {
		return nil, domain.ErrInvalidTemperature
	}

	point, err := s.repo.FindPointByID(ctx, s.db, pointID)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, domain.ErrInvalidPoint
	}
	if !point.Active {
		return nil, domain.ErrInactivePoint
	}

	now := s.clock.Now().UTC()
	measuredAt := now
	if req.MeasuredAt != nil && !req.MeasuredAt.IsZero() {
		measuredAt = req.MeasuredAt.UTC()
	}

	outcome := compliance.EvaluateTemperature(point.Name, *req.Temperature, point.MinTemp, point.MaxTemp)
	reading := &domain.TemperatureReading{
		ID:                 s.genID.Generate(),
		TemperaturePointID: point.ID,
		Temperature:        *req.Temperature,
		MeasuredAt:         measuredAt,
		IsCompliant:        outcome.Compliant,
		Notes:              trimmedPtr(req.Notes),
		RecordedBy:         usercontext.RecordedBy(ctx),
		CreatedAt:          now,
	}
	outcome.SourceID = reading.ID

	resp := &domain.CreateReadingResponse{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateReading(ctx, tx, reading); err != nil {
			return err
		}
		action, err := s.observer.Report(ctx, tx, outcome)
		if err != nil {
			return err
		}
		if action != nil {
			actionID := action.ID.String()
			resp.CorrectiveActionID = &actionID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !reading.IsCompliant {
		obslogger.WithContext(ctx, s.log).Warn("temperature out of range",
			zap.String("temperature_point_id", point.ID.String()),
			zap.Float64("temperature", reading.Temperature),
			zap.Float64("min_temp", point.MinTemp),
			zap.Float64("max_temp", point.MaxTemp),
		)
	}

	reading.Point = point
	resp.Reading = *reading
	return resp, nil
}

func (s *Service) DeleteReading(ctx context.Context, id string) error {
	readingID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.repo.DeleteReading(ctx, s.db, readingID)
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
