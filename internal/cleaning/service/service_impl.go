package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/cleaning/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
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
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	arearepo   repository.Repository[domain.CleaningArea]
	recordrepo repository.Repository[domain.CleaningRecord]
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("cleaning.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		arearepo:   repository.ProvideStore[domain.CleaningArea](p.DB),
		recordrepo: repository.ProvideStore[domain.CleaningRecord](p.DB),
	}
}

func (s *Service) ListAreas(ctx context.Context, req domain.ListAreaRequest) ([]domain.CleaningArea, error) {
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.arearepo.Find(ctx, &domain.CleaningArea{}, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetArea(ctx context.Context, id string) (*domain.CleaningArea, error) {
	areaID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.arearepo.FindByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateArea(ctx context.Context, req domain.AreaRequest) (*domain.CleaningArea, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	frequency := domain.FrequencyDaily
	if req.Frequency != nil {
		parsed, ok := domain.ParseFrequency(strings.ToUpper(trimmed(req.Frequency)))
		if !ok {
			return nil, domain.ErrInvalidFrequency
		}
		frequency = parsed
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.CleaningArea{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: trimmedPtr(req.Description),
		Frequency:   frequency,
		Method:      trimmedPtr(req.Method),
		Agent:       trimmedPtr(req.Agent),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.arearepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateArea(ctx context.Context, id string, req domain.AreaRequest) (*domain.CleaningArea, error) {
	item, err := s.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Frequency != nil {
		frequency, ok := domain.ParseFrequency(strings.ToUpper(trimmed(req.Frequency)))
		if !ok {
			return nil, domain.ErrInvalidFrequency
		}
		item.Frequency = frequency
	}
	if req.Description != nil {
		item.Description = trimmedPtr(req.Description)
	}
	if req.Method != nil {
		item.Method = trimmedPtr(req.Method)
	}
	if req.Agent != nil {
		item.Agent = trimmedPtr(req.Agent)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.arearepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteArea(ctx context.Context, id string) error {
	areaID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.recordrepo.Count(ctx, &domain.CleaningRecord{CleaningAreaID: areaID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAreaInUse
	}
	rows, err := s.arearepo.Delete(ctx, areaID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ListRecords(ctx context.Context, req domain.ListRecordRequest) ([]domain.CleaningRecord, error) {
	filter := &domain.CleaningRecord{}
	if strings.TrimSpace(req.CleaningAreaID) != "" {
		areaID, err := parseID(req.CleaningAreaID, domain.ErrInvalidArea)
		if err != nil {
			return nil, err
		}
		filter.CleaningAreaID = areaID
	}

	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("performed_at", "desc", map[string]bool{"performed_at": true})),
	}
	if req.From != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "performed_at", Operator: option.GTE, Value: req.From.UTC()}))
	}
	if req.To != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "performed_at", Operator: option.LTE, Value: req.To.UTC()}))
	}

	items, err := s.recordrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateRecord(ctx context.Context, req domain.RecordRequest) (*domain.CleaningRecord, error) {
	area, err := s.resolveArea(ctx, req.CleaningAreaID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	performedAt := now
	if req.PerformedAt != nil && !req.PerformedAt.IsZero() {
		performedAt = req.PerformedAt.UTC()
	}
	effective := true
	if req.IsEffective != nil {
		effective = *req.IsEffective
	}

	item := &domain.CleaningRecord{
		ID:             s.genID.Generate(),
		CleaningAreaID: area.ID,
		PerformedAt:    performedAt,
		Method:         fallback(trimmedPtr(req.Method), area.Method),
		Agent:          fallback(trimmedPtr(req.Agent), area.Agent),
		Concentration:  trimmedPtr(req.Concentration),
		IsEffective:    effective,
		VerifiedBy:     trimmedPtr(req.VerifiedBy),
		Notes:          trimmedPtr(req.Notes),
		PerformedBy:    usercontext.RecordedBy(ctx),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.recordrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	if !effective {
		s.log.Warn("cleaning marked ineffective",
			zap.String("cleaning_area_id", area.ID.String()),
			zap.String("cleaning_record_id", item.ID.String()),
		)
	}
	return item, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id string, req domain.RecordRequest) (*domain.CleaningRecord, error) {
	recordID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.recordrepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.CleaningAreaID != nil {
		area, err := s.resolveArea(ctx, req.CleaningAreaID)
		if err != nil {
			return nil, err
		}
		item.CleaningAreaID = area.ID
	}
	if req.PerformedAt != nil && !req.PerformedAt.IsZero() {
		item.PerformedAt = req.PerformedAt.UTC()
	}
	if req.Method != nil {
		item.Method = trimmedPtr(req.Method)
	}
	if req.Agent != nil {
		item.Agent = trimmedPtr(req.Agent)
	}
	if req.Concentration != nil {
		item.Concentration = trimmedPtr(req.Concentration)
	}
	if req.IsEffective != nil {
		item.IsEffective = *req.IsEffective
	}
	if req.VerifiedBy != nil {
		item.VerifiedBy = trimmedPtr(req.VerifiedBy)
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.recordrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	recordID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.recordrepo.Delete(ctx, recordID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// resolveArea only accepts active areas for new entries.
func (s *Service) resolveArea(ctx context.Context, value *string) (*domain.CleaningArea, error) {
	areaID, err := parseID(trimmed(value), domain.ErrInvalidArea)
	if err != nil {
		return nil, err
	}
	area, err := s.arearepo.FindByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, domain.ErrInvalidArea
	}
	if !area.Active {
		return nil, domain.ErrInactiveArea
	}
	return area, nil
}

func fallback(value, def *string) *string {
	if value != nil {
		return value
	}
	return def
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

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
