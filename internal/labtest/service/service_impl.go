package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/labtest/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
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
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	typerepo  repository.Repository[domain.LabTestType]
	testrepo  repository.Repository[domain.LabTest]
	batchrepo repository.Repository[productiondomain.ProductionBatch]
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("labtest.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		typerepo:  repository.ProvideStore[domain.LabTestType](p.DB),
		testrepo:  repository.ProvideStore[domain.LabTest](p.DB),
		batchrepo: repository.ProvideStore[productiondomain.ProductionBatch](p.DB),
	}
}

func (s *Service) ListTypes(ctx context.Context, req domain.ListTypeRequest) ([]domain.LabTestType, error) {
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.typerepo.Find(ctx, &domain.LabTestType{}, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetType(ctx context.Context, id string) (*domain.LabTestType, error) {
	typeID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.typerepo.FindByID(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateType(ctx context.Context, req domain.TypeRequest) (*domain.LabTestType, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.LabTestType{
		ID:        s.genID.Generate(),
		Name:      name,
		Category:  trimmedPtr(req.Category),
		Unit:      trimmedPtr(req.Unit),
		MinValue:  req.MinValue,
		MaxValue:  req.MaxValue,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateRange(item); err != nil {
		return nil, err
	}
	if err := s.typerepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateType leaves existing results untouched; compliance is fixed when a
// result is recorded.
func (s *Service) UpdateType(ctx context.Context, id string, req domain.TypeRequest) (*domain.LabTestType, error) {
	item, err := s.GetType(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := trimmed(req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Category != nil {
		item.Category = trimmedPtr(req.Category)
	}
	if req.Unit != nil {
		item.Unit = trimmedPtr(req.Unit)
	}
	if req.MinValue != nil {
		item.MinValue = req.MinValue
	}
	if req.MaxValue != nil {
		item.MaxValue = req.MaxValue
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := validateRange(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.typerepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteType(ctx context.Context, id string) error {
	typeID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.testrepo.Count(ctx, &domain.LabTest{TestTypeID: typeID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrTypeInUse
	}
	rows, err := s.typerepo.Delete(ctx, typeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ListTests(ctx context.Context, req domain.ListTestRequest) ([]domain.LabTest, error) {
	filter := &domain.LabTest{}
	if strings.TrimSpace(req.TestTypeID) != "" {
		typeID, err := parseID(req.TestTypeID, domain.ErrInvalidType)
		if err != nil {
			return nil, err
		}
		filter.TestTypeID = typeID
	}
	if strings.TrimSpace(req.ProductionBatchID) != "" {
		batchID, err := parseID(req.ProductionBatchID, domain.ErrInvalidBatch)
		if err != nil {
			return nil, err
		}
		filter.ProductionBatchID = &batchID
	}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseStatus(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("sampled_at", "desc", map[string]bool{"sampled_at": true})),
	}
	if req.From != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "sampled_at", Operator: option.GTE, Value: req.From.UTC()}))
	}
	if req.To != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "sampled_at", Operator: option.LTE, Value: req.To.UTC()}))
	}

	items, err := s.testrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetTest(ctx context.Context, id string) (*domain.LabTest, error) {
	testID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.testrepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateTest(ctx context.Context, req domain.TestRequest) (*domain.LabTest, error) {
	testType, err := s.resolveType(ctx, req.TestTypeID)
	if err != nil {
		return nil, err
	}
	if !testType.Active {
		return nil, domain.ErrInactiveType
	}
	sample := trimmed(req.SampleDescription)
	if sample == "" {
		return nil, domain.ErrInvalidSample
	}
	batchID, err := s.resolveBatch(ctx, req.ProductionBatchID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	sampledAt := now
	if req.SampledAt != nil && !req.SampledAt.IsZero() {
		sampledAt = req.SampledAt.UTC()
	}

	item := &domain.LabTest{
		ID:                s.genID.Generate(),
		TestTypeID:        testType.ID,
		SampleDescription: sample,
		ProductionBatchID: batchID,
		SampledAt:         sampledAt,
		Laboratory:        trimmedPtr(req.Laboratory),
		ResultValue:       req.ResultValue,
		ResultText:        trimmedPtr(req.ResultText),
		Notes:             trimmedPtr(req.Notes),
		CreatedBy:         usercontext.RecordedBy(ctx),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	applyResult(item, testType, req.IsCompliant)

	if err := s.testrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.warnIfNonCompliant(ctx, item, testType)
	return item, nil
}

func (s *Service) UpdateTest(ctx context.Context, id string, req domain.TestRequest) (*domain.LabTest, error) {
	item, err := s.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}

	var testType *domain.LabTestType
	if req.TestTypeID != nil {
		if testType, err = s.resolveType(ctx, req.TestTypeID); err != nil {
			return nil, err
		}
		item.TestTypeID = testType.ID
	} else {
		if testType, err = s.typerepo.FindByID(ctx, item.TestTypeID); err != nil {
			return nil, err
		}
		if testType == nil {
			return nil, domain.ErrInvalidType
		}
	}

	if req.SampleDescription != nil {
		sample := trimmed(req.SampleDescription)
		if sample == "" {
			return nil, domain.ErrInvalidSample
		}
		item.SampleDescription = sample
	}
	if req.ProductionBatchID != nil {
		if item.ProductionBatchID, err = s.resolveBatch(ctx, req.ProductionBatchID); err != nil {
			return nil, err
		}
	}
	if req.SampledAt != nil && !req.SampledAt.IsZero() {
		item.SampledAt = req.SampledAt.UTC()
	}
	if req.Laboratory != nil {
		item.Laboratory = trimmedPtr(req.Laboratory)
	}
	if req.ResultValue != nil {
		item.ResultValue = req.ResultValue
	}
	if req.ResultText != nil {
		item.ResultText = trimmedPtr(req.ResultText)
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	explicit := req.IsCompliant
	if explicit == nil {
		explicit = item.IsCompliant
	}
	applyResult(item, testType, explicit)

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.testrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.warnIfNonCompliant(ctx, item, testType)
	return item, nil
}

func (s *Service) DeleteTest(ctx context.Context, id string) error {
	testID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.testrepo.Delete(ctx, testID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) resolveType(ctx context.Context, value *string) (*domain.LabTestType, error) {
	typeID, err := parseID(trimmed(value), domain.ErrInvalidType)
	if err != nil {
		return nil, err
	}
	item, err := s.typerepo.FindByID(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrInvalidType
	}
	return item, nil
}

func (s *Service) resolveBatch(ctx context.Context, value *string) (*snowflake.ID, error) {
	v := trimmed(value)
	if v == "" {
		return nil, nil
	}
	batchID, err := parseID(v, domain.ErrInvalidBatch)
	if err != nil {
		return nil, err
	}
	batch, err := s.batchrepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrInvalidBatch
	}
	return &batch.ID, nil
}

func (s *Service) warnIfNonCompliant(ctx context.Context, item *domain.LabTest, testType *domain.LabTestType) {
	if item.IsCompliant == nil || *item.IsCompliant {
		return
	}
	obslogger.WithContext(ctx, s.log).Warn("lab test result out of range",
		zap.String("lab_test_id", item.ID.String()),
		zap.String("test_type", testType.Name),
	)
}

// applyResult derives status and compliance. A numeric result is always
// judged against the type range; a text-only result keeps the explicit flag.
func applyResult(item *domain.LabTest, testType *domain.LabTestType, explicit *bool) {
	switch {
	case item.ResultValue != nil:
		compliant := testType.Compliant(*item.ResultValue)
		item.IsCompliant = &compliant
		item.Status = domain.StatusCompleted
	case item.ResultText != nil:
		item.IsCompliant = explicit
		item.Status = domain.StatusCompleted
	default:
		item.IsCompliant = nil
		item.Status = domain.StatusPending
	}
}

func validateRange(item *domain.LabTestType) error {
	if item.MinValue != nil && item.MaxValue != nil && *item.MinValue > *item.MaxValue {
		return domain.ErrInvalidRange
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

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
