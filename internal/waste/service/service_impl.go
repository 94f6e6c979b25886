package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/internal/waste/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultUnit = "kg"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	typerepo      repository.Repository[domain.WasteType]
	collectorrepo repository.Repository[domain.WasteCollector]
	recordrepo    repository.Repository[domain.WasteRecord]
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("waste.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		typerepo:      repository.ProvideStore[domain.WasteType](p.DB),
		collectorrepo: repository.ProvideStore[domain.WasteCollector](p.DB),
		recordrepo:    repository.ProvideStore[domain.WasteRecord](p.DB),
	}
}

func (s *Service) ListTypes(ctx context.Context) ([]domain.WasteType, error) {
	items, err := s.typerepo.Find(ctx, &domain.WasteType{},
		option.WithSortBy(option.WithQuerySortBy("code", "asc", map[string]bool{"code": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateType(ctx context.Context, req domain.TypeRequest) (*domain.WasteType, error) {
	code := trimmed(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	item := &domain.WasteType{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        name,
		Category:    trimmedPtr(req.Category),
		Description: trimmedPtr(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.typerepo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateType(ctx context.Context, id string, req domain.TypeRequest) (*domain.WasteType, error) {
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

	if err := setRequired(&item.Code, req.Code, domain.ErrInvalidCode); err != nil {
		return nil, err
	}
	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Category != nil {
		item.Category = trimmedPtr(req.Category)
	}
	if req.Description != nil {
		item.Description = trimmedPtr(req.Description)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.typerepo.Save(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteType(ctx context.Context, id string) error {
	typeID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.recordrepo.Count(ctx, &domain.WasteRecord{WasteTypeID: typeID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrTypeInUse
	}
	return deleted(s.typerepo.Delete(ctx, typeID))
}

func (s *Service) ListCollectors(ctx context.Context) ([]domain.WasteCollector, error) {
	items, err := s.collectorrepo.Find(ctx, &domain.WasteCollector{},
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateCollector(ctx context.Context, req domain.CollectorRequest) (*domain.WasteCollector, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	item := &domain.WasteCollector{
		ID:           s.genID.Generate(),
		Name:         name,
		Address:      trimmedPtr(req.Address),
		Phone:        trimmedPtr(req.Phone),
		Email:        lowerPtr(req.Email),
		PermitNumber: trimmedPtr(req.PermitNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.collectorrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateCollector(ctx context.Context, id string, req domain.CollectorRequest) (*domain.WasteCollector, error) {
	collectorID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.collectorrepo.FindByID(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Address != nil {
		item.Address = trimmedPtr(req.Address)
	}
	if req.Phone != nil {
		item.Phone = trimmedPtr(req.Phone)
	}
	if req.Email != nil {
		item.Email = lowerPtr(req.Email)
	}
	if req.PermitNumber != nil {
		item.PermitNumber = trimmedPtr(req.PermitNumber)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.collectorrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteCollector(ctx context.Context, id string) error {
	collectorID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.recordrepo.Count(ctx, &domain.WasteRecord{CollectorID: &collectorID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCollectorInUse
	}
	return deleted(s.collectorrepo.Delete(ctx, collectorID))
}

func (s *Service) ListRecords(ctx context.Context, req domain.ListRecordRequest) ([]domain.WasteRecord, error) {
	filter := &domain.WasteRecord{}
	if strings.TrimSpace(req.WasteTypeID) != "" {
		typeID, err := parseID(req.WasteTypeID, domain.ErrInvalidType)
		if err != nil {
			return nil, err
		}
		filter.WasteTypeID = typeID
	}
	if strings.TrimSpace(req.CollectorID) != "" {
		collectorID, err := parseID(req.CollectorID, domain.ErrInvalidCollector)
		if err != nil {
			return nil, err
		}
		filter.CollectorID = &collectorID
	}
	return s.findRecords(ctx, filter, req.From, req.To)
}

func (s *Service) findRecords(ctx context.Context, filter *domain.WasteRecord, from, to *time.Time) ([]domain.WasteRecord, error) {
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("disposal_date", "desc", map[string]bool{"disposal_date": true})),
	}
	if from != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "disposal_date", Operator: option.GTE, Value: from.UTC()}))
	}
	if to != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "disposal_date", Operator: option.LTE, Value: to.UTC()}))
	}
	items, err := s.recordrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) CreateRecord(ctx context.Context, req domain.RecordRequest) (*domain.WasteRecord, error) {
	wasteType, err := s.resolveType(ctx, req.WasteTypeID)
	if err != nil {
		return nil, err
	}
	collectorID, err := s.resolveCollector(ctx, req.CollectorID)
	if err != nil {
		return nil, err
	}
	if req.Quantity == nil || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	unit := trimmed(req.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	now := s.clock.Now().UTC()
	disposalDate := now
	if req.DisposalDate != nil && !req.DisposalDate.IsZero() {
		disposalDate = req.DisposalDate.UTC()
	}

	item := &domain.WasteRecord{
		ID:             s.genID.Generate(),
		WasteTypeID:    wasteType.ID,
		CollectorID:    collectorID,
		Quantity:       *req.Quantity,
		Unit:           unit,
		DisposalDate:   disposalDate,
		DocumentNumber: trimmedPtr(req.DocumentNumber),
		Notes:          trimmedPtr(req.Notes),
		CreatedBy:      usercontext.RecordedBy(ctx),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.recordrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id string, req domain.RecordRequest) (*domain.WasteRecord, error) {
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

	if req.WasteTypeID != nil {
		wasteType, err := s.resolveType(ctx, req.WasteTypeID)
		if err != nil {
			return nil, err
		}
		item.WasteTypeID = wasteType.ID
	}
	if req.CollectorID != nil {
		if item.CollectorID, err = s.resolveCollector(ctx, req.CollectorID); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if unit := trimmed(req.Unit); unit != "" {
		item.Unit = unit
	}
	if req.DisposalDate != nil && !req.DisposalDate.IsZero() {
		item.DisposalDate = req.DisposalDate.UTC()
	}
	if req.DocumentNumber != nil {
		item.DocumentNumber = trimmedPtr(req.DocumentNumber)
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
	return deleted(s.recordrepo.Delete(ctx, recordID))
}

func (s *Service) TotalByType(ctx context.Context, from, to time.Time) ([]domain.TypeTotal, error) {
	records, err := s.findRecords(ctx, &domain.WasteRecord{}, &from, &to)
	if err != nil {
		return nil, err
	}
	types, err := s.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]domain.WasteType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}

	type key struct {
		typeID snowflake.ID
		unit   string
	}
	sums := make(map[key]decimal.Decimal)
	for _, record := range records {
		k := key{typeID: record.WasteTypeID, unit: record.Unit}
		sums[k] = sums[k].Add(record.Quantity)
	}

	out := make([]domain.TypeTotal, 0, len(sums))
	for k, quantity := range sums {
		wasteType := byID[k.typeID]
		out = append(out, domain.TypeTotal{
			WasteTypeID: k.typeID.String(),
			Code:        wasteType.Code,
			Name:        wasteType.Name,
			Unit:        k.unit,
			Quantity:    quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Unit < out[j].Unit
	})
	return out, nil
}

func (s *Service) resolveType(ctx context.Context, value *string) (*domain.WasteType, error) {
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

func (s *Service) resolveCollector(ctx context.Context, value *string) (*snowflake.ID, error) {
	v := trimmed(value)
	if v == "" {
		return nil, nil
	}
	collectorID, err := parseID(v, domain.ErrInvalidCollector)
	if err != nil {
		return nil, err
	}
	item, err := s.collectorrepo.FindByID(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrInvalidCollector
	}
	return &item.ID, nil
}

func deleted(rows int64, err error) error {
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

func lowerPtr(value *string) *string {
	v := strings.ToLower(trimmed(value))
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
