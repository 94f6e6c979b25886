package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/pestcontrol/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
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
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	observer  compliance.Observer
	pointrepo repository.Repository[domain.PestControlPoint]
	checkrepo repository.Repository[domain.PestControlCheck]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("pestcontrol.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		observer:  p.Observer,
		pointrepo: repository.ProvideStore[domain.PestControlPoint](p.DB),
		checkrepo: repository.ProvideStore[domain.PestControlCheck](p.DB),
	}
}

func (s *Service) ListPoints(ctx context.Context, req domain.ListPointRequest) ([]domain.PestControlPoint, error) {
	filter := &domain.PestControlPoint{}
	if value := strings.TrimSpace(req.Type); value != "" {
		pointType, ok := domain.ParsePointType(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		filter.Type = pointType
	}
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("code", "asc", map[string]bool{"code": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.pointrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetPoint(ctx context.Context, id string) (*domain.PestControlPoint, error) {
	pointID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.pointrepo.FindByID(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreatePoint(ctx context.Context, req domain.PointRequest) (*domain.PestControlPoint, error) {
	code := strings.ToUpper(trimmed(req.Code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	pointType := domain.PointTypeOther
	if req.Type != nil {
		parsed, ok := domain.ParsePointType(strings.ToUpper(trimmed(req.Type)))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		pointType = parsed
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.PestControlPoint{
		ID:        s.genID.Generate(),
		Code:      code,
		Name:      name,
		Location:  trimmedPtr(req.Location),
		Type:      pointType,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pointrepo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdatePoint(ctx context.Context, id string, req domain.PointRequest) (*domain.PestControlPoint, error) {
	item, err := s.GetPoint(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(trimmed(req.Code))
		if code == "" {
			return nil, domain.ErrInvalidCode
		}
		item.Code = code
	}
	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Type != nil {
		pointType, ok := domain.ParsePointType(strings.ToUpper(trimmed(req.Type)))
		if !ok {
			return nil, domain.ErrInvalidType
		}
		item.Type = pointType
	}
	if req.Location != nil {
		item.Location = trimmedPtr(req.Location)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.pointrepo.Save(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) DeletePoint(ctx context.Context, id string) error {
	pointID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.checkrepo.Count(ctx, &domain.PestControlCheck{PointID: pointID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrPointInUse
	}
	rows, err := s.pointrepo.Delete(ctx, pointID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ListChecks(ctx context.Context, req domain.ListCheckRequest) ([]domain.PestControlCheck, error) {
	filter := &domain.PestControlCheck{}
	if strings.TrimSpace(req.PointID) != "" {
		pointID, err := parseID(req.PointID, domain.ErrInvalidPoint)
		if err != nil {
			return nil, err
		}
		filter.PointID = pointID
	}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseCheckStatus(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("checked_at", "desc", map[string]bool{"checked_at": true})),
	}
	if req.From != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "checked_at", Operator: option.GTE, Value: req.From.UTC()}))
	}
	if req.To != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "checked_at", Operator: option.LTE, Value: req.To.UTC()}))
	}

	items, err := s.checkrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateCheck(ctx context.Context, req domain.CreateCheckRequest) (*domain.CreateCheckResponse, error) {
	pointID, err := parseID(req.PointID, domain.ErrInvalidPoint)
	if err != nil {
		return nil, err
	}
	status, ok := domain.ParseCheckStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	point, err := s.pointrepo.FindByID(ctx, pointID)
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
	checkedAt := now
	if req.CheckedAt != nil && !req.CheckedAt.IsZero() {
		checkedAt = req.CheckedAt.UTC()
	}

	check := &domain.PestControlCheck{
		ID:          s.genID.Generate(),
		PointID:     point.ID,
		CheckedAt:   checkedAt,
		Status:      status,
		Findings:    trimmedPtr(req.Findings),
		ActionTaken: trimmedPtr(req.ActionTaken),
		CheckedBy:   usercontext.RecordedBy(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	outcome := compliance.EvaluatePestCheck(point.Name, string(status), trimmed(req.Findings))
	outcome.SourceID = check.ID

	resp := &domain.CreateCheckResponse{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkrepo.WithTrx(tx).Create(ctx, check); err != nil {
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

	if !outcome.Compliant {
		obslogger.WithContext(ctx, s.log).Warn("pest activity reported",
			zap.String("pest_control_point_id", point.ID.String()),
			zap.String("status", string(status)),
		)
	}

	check.Point = point
	resp.Check = *check
	return resp, nil
}

func (s *Service) UpdateCheck(ctx context.Context, id string, req domain.UpdateCheckRequest) (*domain.PestControlCheck, error) {
	checkID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.checkrepo.FindByID(ctx, checkID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Findings != nil {
		item.Findings = trimmedPtr(req.Findings)
	}
	if req.ActionTaken != nil {
		item.ActionTaken = trimmedPtr(req.ActionTaken)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.checkrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteCheck(ctx context.Context, id string) error {
	checkID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.checkrepo.Delete(ctx, checkID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
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
