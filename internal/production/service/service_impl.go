package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	haccpdomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	"github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/ratelimit"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxBatchNumberAttempts = 5
	batchNumberLockTTL     = 5 * time.Second
	keyBatchNumberLock     = "production:batch_number:%s"
	batchNumberDateLayout  = "20060102"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Observer compliance.Observer
	Repo     domain.Repository
	Products productdomain.Repository
	Plan     haccpdomain.Service
	Locker   *ratelimit.Locker          `optional:"true"`
	Metrics  *metrics.ComplianceMetrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	observer      compliance.Observer
	repo          domain.Repository
	products      productdomain.Repository
	plan          haccpdomain.Service
	receptionrepo repository.Repository[receptiondomain.Reception]
	curingrepo    repository.Repository[curingdomain.CuringBatch]
	receiptrepo   repository.Repository[materialdomain.MaterialReceipt]
	materialrepo  repository.Repository[materialdomain.Material]
	locker        *ratelimit.Locker
	metrics       *metrics.ComplianceMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("production.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		observer:      p.Observer,
		repo:          p.Repo,
		products:      p.Products,
		plan:          p.Plan,
		receptionrepo: repository.ProvideStore[receptiondomain.Reception](p.DB),
		curingrepo:    repository.ProvideStore[curingdomain.CuringBatch](p.DB),
		receiptrepo:   repository.ProvideStore[materialdomain.MaterialReceipt](p.DB),
		materialrepo:  repository.ProvideStore[materialdomain.Material](p.DB),
		locker:        p.Locker,
		metrics:       p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.ProductionBatch, error) {
	filter := domain.BatchFilter{From: req.From, To: req.To}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseStatus(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if strings.TrimSpace(req.ProductID) != "" {
		productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
		if err != nil {
			return nil, err
		}
		filter.ProductID = productID
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ProductionBatch, error) {
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

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ProductionBatch, error) {
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	if req.Quantity == nil || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := s.products.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}
	if !product.Active {
		return nil, domain.ErrInactiveProduct
	}

	now := s.clock.Now().UTC()
	productionDate := now
	if req.ProductionDate != nil && !req.ProductionDate.IsZero() {
		productionDate = req.ProductionDate.UTC()
	}
	productionDate = time.Date(productionDate.Year(), productionDate.Month(), productionDate.Day(), 0, 0, 0, 0, time.UTC)

	unit := product.Unit
	if req.Unit != nil {
		if unit = strings.TrimSpace(*req.Unit); unit == "" {
			return nil, domain.ErrInvalidUnit
		}
	}

	batch := &domain.ProductionBatch{
		ID:             s.genID.Generate(),
		ProductID:      product.ID,
		Quantity:       *req.Quantity,
		Unit:           unit,
		ProductionDate: productionDate,
		Status:         domain.StatusInProgress,
		Notes:          trimmedPtr(req.Notes),
		CreatedBy:      usercontext.RecordedBy(ctx),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.StartTime != nil && !req.StartTime.IsZero() {
		start := req.StartTime.UTC()
		batch.StartTime = &start
	}
	batch.Materials, err = s.buildMaterials(ctx, batch.ID, req.Materials, now)
	if err != nil {
		return nil, err
	}

	prefix := productionDate.Format(batchNumberDateLayout)
	release := s.lockBatchNumber(ctx, prefix)
	defer release()

	for attempt := 0; attempt < maxBatchNumberAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.nextBatchNumber(ctx, tx, prefix, attempt)
			if err != nil {
				return err
			}
			batch.BatchNumber = number
			return s.repo.Create(ctx, tx, batch)
		})
		if err == nil || !db.IsDuplicateKeyErr(err) {
			break
		}
		s.metrics.IncWriteRetry("production_batch_number", err)
	}
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrBatchNumberConflict
		}
		return nil, err
	}

	batch.Product = product
	return batch, nil
}

// buildMaterials validates every line and checks that its source exists.
func (s *Service) buildMaterials(ctx context.Context, batchID snowflake.ID, lines []domain.MaterialRequest, now time.Time) ([]domain.BatchMaterial, error) {
	materials := make([]domain.BatchMaterial, 0, len(lines))
	for _, line := range lines {
		kind, ok := domain.ParseMaterialKind(strings.ToUpper(strings.TrimSpace(line.Kind)))
		if !ok {
			return nil, domain.ErrInvalidMaterialKind
		}
		sourceID, err := parseID(line.SourceID, domain.ErrInvalidMaterialSource)
		if err != nil {
			return nil, err
		}
		if line.Quantity == nil || !line.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		defaultUnit, err := s.materialSourceUnit(ctx, kind, sourceID)
		if err != nil {
			return nil, err
		}
		unit := defaultUnit
		if line.Unit != nil && strings.TrimSpace(*line.Unit) != "" {
			unit = strings.TrimSpace(*line.Unit)
		}
		materials = append(materials, domain.BatchMaterial{
			ID:        s.genID.Generate(),
			BatchID:   batchID,
			Kind:      kind,
			SourceID:  sourceID,
			Quantity:  *line.Quantity,
			Unit:      unit,
			CreatedAt: now,
		})
	}
	return materials, nil
}

// materialSourceUnit resolves the referenced row and returns the unit it is
// kept in.
func (s *Service) materialSourceUnit(ctx context.Context, kind domain.MaterialKind, sourceID snowflake.ID) (string, error) {
	switch kind {
	case domain.MaterialKindRawMaterial:
		reception, err := s.receptionrepo.FindByID(ctx, sourceID)
		if err != nil {
			return "", err
		}
		if reception == nil {
			return "", domain.ErrInvalidMaterialSource
		}
		return reception.Unit, nil
	case domain.MaterialKindCuringBatch:
		batch, err := s.curingrepo.FindByID(ctx, sourceID)
		if err != nil {
			return "", err
		}
		if batch == nil {
			return "", domain.ErrInvalidMaterialSource
		}
		return "kg", nil
	case domain.MaterialKindMaterial:
		receipt, err := s.receiptrepo.FindByID(ctx, sourceID)
		if err != nil {
			return "", err
		}
		if receipt == nil {
			return "", domain.ErrInvalidMaterialSource
		}
		material, err := s.materialrepo.FindByID(ctx, receipt.MaterialID)
		if err != nil {
			return "", err
		}
		if material == nil {
			return "", domain.ErrInvalidMaterialSource
		}
		return material.Unit, nil
	default:
		return "", domain.ErrInvalidMaterialKind
	}
}

// nextBatchNumber returns prefix-NNN, one past the highest sequence used on
// the production date.
func (s *Service) nextBatchNumber(ctx context.Context, tx *gorm.DB, prefix string, attempt int) (string, error) {
	numbers, err := s.repo.BatchNumbersWithPrefix(ctx, tx, prefix)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, number := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix+"-"))
		if err != nil {
			continue
		}
		highest = max(highest, seq)
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1+attempt), nil
}

func (s *Service) lockBatchNumber(ctx context.Context, prefix string) func() {
	if s.locker == nil {
		return func() {}
	}
	lease, err := s.locker.Acquire(ctx, fmt.Sprintf(keyBatchNumberLock, prefix), batchNumberLockTTL)
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

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.ProductionBatch, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusInProgress {
		return nil, domain.ErrInvalidTransition
	}

	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return nil, domain.ErrInvalidUnit
		}
		item.Unit = unit
	}
	if req.StartTime != nil && !req.StartTime.IsZero() {
		start := req.StartTime.UTC()
		item.StartTime = &start
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	now := s.clock.Now().UTC()
	var materials []domain.BatchMaterial
	if req.Materials != nil {
		if materials, err = s.buildMaterials(ctx, item.ID, *req.Materials, now); err != nil {
			return nil, err
		}
	}

	item.UpdatedAt = now
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.Transition(ctx, tx, item, domain.StatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		if req.Materials == nil {
			return nil
		}
		return s.repo.ReplaceMaterials(ctx, tx, item.ID, materials)
	})
	if err != nil {
		return nil, err
	}
	if req.Materials != nil {
		item.Materials = materials
	}
	return item, nil
}

// Complete closes the batch and records whether the final core temperature
// met the product's thermal requirement.
func (s *Service) Complete(ctx context.Context, id string, req domain.CompleteRequest) (*domain.CompleteResponse, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusInProgress {
		return nil, domain.ErrInvalidTransition
	}
	if req.FinalTemperature == nil {
		return nil, domain.ErrInvalidFinalTemperature
	}

	now := s.clock.Now().UTC()
	end := now
	if req.EndTime != nil && !req.EndTime.IsZero() {
		end = req.EndTime.UTC()
	}
	if item.StartTime != nil && end.Before(*item.StartTime) {
		return nil, domain.ErrInvalidEndTime
	}

	thermal := s.observer.Config().Thermal
	productCode := ""
	if item.Product != nil {
		productCode = item.Product.Code
	}
	required := thermal.RequiredFor(productCode)
	ccpID, err := s.thermalCCP(ctx, thermal.CCPCode)
	if err != nil {
		return nil, err
	}

	outcome := compliance.EvaluateThermal(item.BatchNumber, *req.FinalTemperature, required, ccpID)
	outcome.SourceID = item.ID

	final := *req.FinalTemperature
	compliant := outcome.Compliant
	item.Status = domain.StatusCompleted
	item.EndTime = &end
	item.FinalTemperature = &final
	item.TemperatureCompliant = &compliant
	item.RequiredTemperature = &required
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}
	item.UpdatedAt = now

	resp := &domain.CompleteResponse{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.Transition(ctx, tx, item, domain.StatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
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

	if !compliant {
		obslogger.WithContext(ctx, s.log).Warn("insufficient thermal treatment",
			zap.String("production_batch_id", item.ID.String()),
			zap.String("batch_number", item.BatchNumber),
			zap.Float64("final_temperature", final),
			zap.Float64("required_temperature", required),
		)
	}

	resp.Batch = *item
	return resp, nil
}

func (s *Service) thermalCCP(ctx context.Context, code string) (*snowflake.ID, error) {
	if s.plan == nil || strings.TrimSpace(code) == "" {
		return nil, nil
	}
	ccp, err := s.plan.FindCCPByCode(ctx, code)
	if err != nil {
		if errors.Is(err, haccpdomain.ErrNotFound) {
			s.log.Warn("thermal ccp not found", zap.String("ccp_code", code))
			return nil, nil
		}
		return nil, err
	}
	id := ccp.ID
	return &id, nil
}

func (s *Service) Release(ctx context.Context, id string) (*domain.ProductionBatch, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusCompleted {
		return nil, domain.ErrInvalidTransition
	}
	if item.TemperatureCompliant == nil || !*item.TemperatureCompliant {
		return nil, domain.ErrNotCompliant
	}

	item.Status = domain.StatusReleased
	item.UpdatedAt = s.clock.Now().UTC()
	ok, err := s.repo.Transition(ctx, s.db, item, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	return item, nil
}

func (s *Service) Block(ctx context.Context, id string, req domain.BlockRequest) (*domain.ProductionBatch, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrInvalidReason
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.StatusReleased {
		return nil, domain.ErrInvalidTransition
	}

	from := item.Status
	item.Status = domain.StatusBlocked
	item.BlockReason = &reason
	item.UpdatedAt = s.clock.Now().UTC()
	ok, err := s.repo.Transition(ctx, s.db, item, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	obslogger.WithContext(ctx, s.log).Info("production batch blocked",
		zap.String("production_batch_id", item.ID.String()),
		zap.String("batch_number", item.BatchNumber),
	)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	var rows int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err = s.repo.Delete(ctx, tx, batchID)
		return err
	})
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
