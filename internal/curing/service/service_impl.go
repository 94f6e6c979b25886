package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/curing/domain"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/ratelimit"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxBatchNumberAttempts = 5
	batchNumberLockTTL     = 5 * time.Second
	keyBatchNumberLock     = "curing:batch_number:%s"
	sourceCuringBatch      = "curing_batch"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Compliance *config.ComplianceConfigHolder
	Repo       domain.Repository
	Materials  materialdomain.Service
	Locker     *ratelimit.Locker          `optional:"true"`
	Metrics    *metrics.ComplianceMetrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	compliance    *config.ComplianceConfigHolder
	repo          domain.Repository
	materials     materialdomain.Service
	receptionrepo repository.Repository[receptiondomain.Reception]
	locker        *ratelimit.Locker
	metrics       *metrics.ComplianceMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("curing.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		compliance:    p.Compliance,
		repo:          p.Repo,
		materials:     p.Materials,
		receptionrepo: repository.ProvideStore[receptiondomain.Reception](p.DB),
		locker:        p.Locker,
		metrics:       p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.CuringBatch, error) {
	filter := domain.BatchFilter{From: req.From, To: req.To}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseStatus(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if value := strings.TrimSpace(req.Method); value != "" {
		method, ok := domain.ParseMethod(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidMethod
		}
		filter.Method = method
	}
	if strings.TrimSpace(req.ReceptionID) != "" {
		receptionID, err := parseID(req.ReceptionID, domain.ErrInvalidReception)
		if err != nil {
			return nil, err
		}
		filter.ReceptionID = receptionID
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.CuringBatch, error) {
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, batchID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CuringBatch, error) {
	receptionID, err := parseID(req.ReceptionID, domain.ErrInvalidReception)
	if err != nil {
		return nil, err
	}
	reception, err := s.receptionrepo.FindByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if reception == nil {
		return nil, domain.ErrInvalidReception
	}
	if req.Quantity == nil || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	method, ok := domain.ParseMethod(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !ok {
		return nil, domain.ErrInvalidMethod
	}

	cfg := s.compliance.Get().Curing
	now := s.clock.Now().UTC()
	start := now
	if req.StartDate != nil && !req.StartDate.IsZero() {
		start = req.StartDate.UTC()
	}

	batch := &domain.CuringBatch{
		ID:              s.genID.Generate(),
		ReceptionID:     reception.ID,
		MeatDescription: trimmedPtr(req.MeatDescription),
		Quantity:        *req.Quantity,
		Method:          method,
		StartDate:       start,
		Temperature:     req.Temperature,
		Status:          domain.StatusInProgress,
		Notes:           trimmedPtr(req.Notes),
		CreatedBy:       usercontext.RecordedBy(ctx),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	switch method {
	case domain.MethodDry:
		pct, err := percentage(req.SaltPercentage, cfg.DefaultSaltPercentage)
		if err != nil {
			return nil, err
		}
		amount := req.Quantity.Mul(pct).Div(hundred).Round(3)
		if req.CuringSaltAmount != nil {
			if !req.CuringSaltAmount.IsPositive() {
				return nil, domain.ErrInvalidSaltAmount
			}
			amount = *req.CuringSaltAmount
		}
		batch.SaltPercentage = &pct
		batch.CuringSaltAmount = &amount
		batch.PlannedEndDate = start.AddDate(0, 0, cfg.DryDays)
	case domain.MethodInjection:
		pct, err := percentage(req.InjectionPercentage, cfg.DefaultInjectionPercentage)
		if err != nil {
			return nil, err
		}
		brine := req.Quantity.Mul(pct).Div(hundred).Round(3)
		batch.InjectionPercentage = &pct
		batch.BrineQuantity = &brine
		if req.BrineSaltConcentration != nil {
			if req.BrineSaltConcentration.IsNegative() || req.BrineSaltConcentration.GreaterThan(hundred) {
				return nil, domain.ErrInvalidPercentage
			}
			concentration := *req.BrineSaltConcentration
			batch.BrineSaltConcentration = &concentration
		}
		batch.PlannedEndDate = start.AddDate(0, 0, cfg.InjectionDays)
	}

	var saltMaterial *materialdomain.Material
	if batch.Method == domain.MethodDry {
		if saltMaterial, err = s.findSaltMaterial(ctx, cfg); err != nil {
			return nil, err
		}
	}

	base := start.Format("02-01")
	release := s.lockBatchNumber(ctx, base)
	defer release()

	for attempt := 0; attempt < maxBatchNumberAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.nextBatchNumber(ctx, tx, base, attempt)
			if err != nil {
				return err
			}
			batch.BatchNumber = number
			deduction, err := s.deductSalt(ctx, tx, batch, saltMaterial, cfg)
			if err != nil {
				return err
			}
			batch.SaltDeduction = datatypes.NewJSONType(deduction)
			return s.repo.Create(ctx, tx, batch)
		})
		if err == nil || !db.IsDuplicateKeyErr(err) {
			break
		}
		s.metrics.IncWriteRetry("curing_batch_number", err)
	}
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrBatchNumberConflict
		}
		return nil, err
	}

	batch.Reception = reception
	return batch, nil
}

func (s *Service) findSaltMaterial(ctx context.Context, cfg config.CuringConfig) (*materialdomain.Material, error) {
	matches, err := s.materials.FindByNamePattern(ctx, cfg.SaltMaterialPattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		obslogger.WithContext(ctx, s.log).Warn("curing salt material not found",
			zap.String("pattern", cfg.SaltMaterialPattern),
		)
		return nil, nil
	}
	return &matches[0], nil
}

// deductSalt takes the curing salt for a DRY batch from the material matching
// the configured name pattern. Missing stock never fails the batch unless the
// configured policy says so.
func (s *Service) deductSalt(ctx context.Context, tx *gorm.DB, batch *domain.CuringBatch, material *materialdomain.Material, cfg config.CuringConfig) (domain.SaltDeduction, error) {
	if batch.Method != domain.MethodDry || batch.CuringSaltAmount == nil || !batch.CuringSaltAmount.IsPositive() {
		return domain.SaltDeduction{Status: domain.DeductionNotRequired}, nil
	}
	if material == nil {
		return domain.SaltDeduction{Status: domain.DeductionNoMaterial}, nil
	}

	result, err := s.materials.Deduct(ctx, tx, materialdomain.DeductRequest{
		MaterialID: material.ID,
		Amount:     *batch.CuringSaltAmount,
		Policy:     cfg.InsufficientStockPolicy,
		SourceType: sourceCuringBatch,
		SourceID:   batch.ID,
	})
	if err != nil {
		return domain.SaltDeduction{}, err
	}
	materialID := material.ID
	return domain.SaltDeduction{
		Status:     string(result.Status),
		MaterialID: &materialID,
		Result:     result,
	}, nil
}

// nextBatchNumber returns base for the first batch of the day and base-N
// after that. attempt skips numbers taken by concurrent writers.
func (s *Service) nextBatchNumber(ctx context.Context, tx *gorm.DB, base string, attempt int) (string, error) {
	numbers, err := s.repo.BatchNumbersWithBase(ctx, tx, base)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, number := range numbers {
		if number == base {
			highest = max(highest, 1)
			continue
		}
		suffix, err := strconv.Atoi(strings.TrimPrefix(number, base+"-"))
		if err != nil {
			continue
		}
		highest = max(highest, suffix)
	}
	next := highest + 1 + attempt
	if next == 1 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, next), nil
}

func (s *Service) lockBatchNumber(ctx context.Context, base string) func() {
	if s.locker == nil {
		return func() {}
	}
	lease, err := s.locker.Acquire(ctx, fmt.Sprintf(keyBatchNumberLock, base), batchNumberLockTTL)
	if err != nil {
		if !errors.Is(err, ratelimit.ErrLockHeld) {
			s.log.Debug("batch number lock unavailable", zap.Error(err))
		}
		return func() {}
	}
	return func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release batch number lock", zap.String("key", lease.Key()), zap.Error(err))
		}
	}
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.CuringBatch, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusInProgress {
		return nil, domain.ErrInvalidTransition
	}

	if req.MeatDescription != nil {
		item.MeatDescription = trimmedPtr(req.MeatDescription)
	}
	if req.PlannedEndDate != nil && !req.PlannedEndDate.IsZero() {
		planned := req.PlannedEndDate.UTC()
		if planned.Before(item.StartDate) {
			return nil, domain.ErrInvalidEndDate
		}
		item.PlannedEndDate = planned
	}
	if req.Temperature != nil {
		item.Temperature = req.Temperature
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.transition(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Complete(ctx context.Context, id string, req domain.CompleteRequest) (*domain.CuringBatch, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusInProgress {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	end := now
	if req.ActualEndDate != nil && !req.ActualEndDate.IsZero() {
		end = req.ActualEndDate.UTC()
	}
	if end.Before(item.StartDate) {
		return nil, domain.ErrInvalidEndDate
	}
	item.ActualEndDate = &end
	item.Status = domain.StatusCompleted
	if req.Temperature != nil {
		item.Temperature = req.Temperature
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	item.UpdatedAt = now
	if err := s.transition(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Cancel(ctx context.Context, id string, req domain.CancelRequest) (*domain.CuringBatch, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusInProgress {
		return nil, domain.ErrInvalidTransition
	}

	item.Status = domain.StatusCancelled
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}
	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.transition(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// transition persists a batch read as IN_PROGRESS, failing when another
// request has moved it on since.
func (s *Service) transition(ctx context.Context, item *domain.CuringBatch) error {
	ok, err := s.repo.Transition(ctx, s.db, item, domain.StatusInProgress)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, s.db, batchID)
	if err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrBatchInUse
		}
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func percentage(value *decimal.Decimal, fallback float64) (decimal.Decimal, error) {
	if value == nil {
		return decimal.NewFromFloat(fallback), nil
	}
	if !value.IsPositive() || value.GreaterThan(hundred) {
		return decimal.Zero, domain.ErrInvalidPercentage
	}
	return *value, nil
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
