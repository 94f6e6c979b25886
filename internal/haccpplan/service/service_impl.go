package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/haccpplan/domain"
	"github.com/smallbiznis/haccp/pkg/db"
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
	ccprepo    repository.Repository[domain.CCP]
	hazardrepo repository.Repository[domain.Hazard]
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("haccpplan.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		ccprepo:    repository.ProvideStore[domain.CCP](p.DB),
		hazardrepo: repository.ProvideStore[domain.Hazard](p.DB),
	}
}

func (s *Service) ListCCPs(ctx context.Context, req domain.ListCCPRequest) ([]domain.CCP, error) {
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("code", "asc", map[string]bool{"code": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.ccprepo.Find(ctx, &domain.CCP{}, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetCCP(ctx context.Context, id string) (*domain.CCP, error) {
	ccpID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.ccprepo.FindByID(ctx, ccpID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) FindCCPByCode(ctx context.Context, code string) (*domain.CCP, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	item, err := s.ccprepo.FindOne(ctx, &domain.CCP{Code: code})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateCCP(ctx context.Context, req domain.CCPRequest) (*domain.CCP, error) {
	code := strings.ToUpper(trimmed(req.Code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	step := trimmed(req.ProcessStep)
	if step == "" {
		return nil, domain.ErrInvalidProcessStep
	}
	hazard := trimmed(req.Hazard)
	if hazard == "" {
		return nil, domain.ErrInvalidHazard
	}
	limit := trimmed(req.CriticalLimit)
	if limit == "" {
		return nil, domain.ErrInvalidCriticalLimit
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.CCP{
		ID:                  s.genID.Generate(),
		Code:                code,
		Name:                name,
		ProcessStep:         step,
		Hazard:              hazard,
		CriticalLimit:       limit,
		Monitoring:          trimmedPtr(req.Monitoring),
		CorrectiveProcedure: trimmedPtr(req.CorrectiveProcedure),
		Verification:        trimmedPtr(req.Verification),
		Active:              active,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.ccprepo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateCCP(ctx context.Context, id string, req domain.CCPRequest) (*domain.CCP, error) {
	item, err := s.GetCCP(ctx, id)
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
	if err := setRequired(&item.ProcessStep, req.ProcessStep, domain.ErrInvalidProcessStep); err != nil {
		return nil, err
	}
	if err := setRequired(&item.Hazard, req.Hazard, domain.ErrInvalidHazard); err != nil {
		return nil, err
	}
	if err := setRequired(&item.CriticalLimit, req.CriticalLimit, domain.ErrInvalidCriticalLimit); err != nil {
		return nil, err
	}
	if req.Monitoring != nil {
		item.Monitoring = trimmedPtr(req.Monitoring)
	}
	if req.CorrectiveProcedure != nil {
		item.CorrectiveProcedure = trimmedPtr(req.CorrectiveProcedure)
	}
	if req.Verification != nil {
		item.Verification = trimmedPtr(req.Verification)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.ccprepo.Save(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteCCP(ctx context.Context, id string) error {
	ccpID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Hazard{}).Where("ccp_id = ?", ccpID).Update("ccp_id", nil).Error; err != nil {
			return err
		}
		rows, err := s.ccprepo.WithTrx(tx).Delete(ctx, ccpID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (s *Service) ListHazards(ctx context.Context, req domain.ListHazardRequest) ([]domain.Hazard, error) {
	filter := &domain.Hazard{}
	if value := strings.ToUpper(strings.TrimSpace(req.Type)); value != "" {
		hazardType, ok := domain.ParseHazardType(value)
		if !ok {
			return nil, domain.ErrInvalidHazardType
		}
		filter.Type = hazardType
	}
	if strings.TrimSpace(req.CCPID) != "" {
		ccpID, err := parseID(req.CCPID, domain.ErrInvalidCCP)
		if err != nil {
			return nil, err
		}
		filter.CCPID = &ccpID
	}

	items, err := s.hazardrepo.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("risk_score", "desc", map[string]bool{"risk_score": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateHazard(ctx context.Context, req domain.HazardRequest) (*domain.Hazard, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	hazardType, ok := domain.ParseHazardType(strings.ToUpper(trimmed(req.Type)))
	if !ok {
		return nil, domain.ErrInvalidHazardType
	}
	step := trimmed(req.ProcessStep)
	if step == "" {
		return nil, domain.ErrInvalidProcessStep
	}
	severity, err := scale(req.Severity, domain.ErrInvalidSeverity)
	if err != nil {
		return nil, err
	}
	likelihood, err := scale(req.Likelihood, domain.ErrInvalidLikelihood)
	if err != nil {
		return nil, err
	}
	ccpID, err := s.resolveCCP(ctx, req.CCPID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	item := &domain.Hazard{
		ID:              s.genID.Generate(),
		Name:            name,
		Type:            hazardType,
		ProcessStep:     step,
		Severity:        severity,
		Likelihood:      likelihood,
		RiskScore:       domain.RiskScore(severity, likelihood),
		ControlMeasures: trimmedPtr(req.ControlMeasures),
		CCPID:           ccpID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.hazardrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateHazard(ctx context.Context, id string, req domain.HazardRequest) (*domain.Hazard, error) {
	hazardID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.hazardrepo.FindByID(ctx, hazardID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if err := setRequired(&item.ProcessStep, req.ProcessStep, domain.ErrInvalidProcessStep); err != nil {
		return nil, err
	}
	if req.Type != nil {
		hazardType, ok := domain.ParseHazardType(strings.ToUpper(trimmed(req.Type)))
		if !ok {
			return nil, domain.ErrInvalidHazardType
		}
		item.Type = hazardType
	}
	if req.Severity != nil {
		if item.Severity, err = scale(req.Severity, domain.ErrInvalidSeverity); err != nil {
			return nil, err
		}
	}
	if req.Likelihood != nil {
		if item.Likelihood, err = scale(req.Likelihood, domain.ErrInvalidLikelihood); err != nil {
			return nil, err
		}
	}
	if req.ControlMeasures != nil {
		item.ControlMeasures = trimmedPtr(req.ControlMeasures)
	}
	if req.CCPID != nil {
		if item.CCPID, err = s.resolveCCP(ctx, req.CCPID); err != nil {
			return nil, err
		}
	}

	item.RiskScore = domain.RiskScore(item.Severity, item.Likelihood)
	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.hazardrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteHazard(ctx context.Context, id string) error {
	hazardID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.hazardrepo.Delete(ctx, hazardID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) resolveCCP(ctx context.Context, value *string) (*snowflake.ID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	ccpID, err := parseID(*value, domain.ErrInvalidCCP)
	if err != nil {
		return nil, err
	}
	ccp, err := s.ccprepo.FindByID(ctx, ccpID)
	if err != nil {
		return nil, err
	}
	if ccp == nil {
		return nil, domain.ErrInvalidCCP
	}
	return &ccpID, nil
}

func scale(value *int, invalidErr error) (int, error) {
	if value == nil || *value < 1 || *value > 5 {
		return 0, invalidErr
	}
	return *value, nil
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
