package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/material/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxDeductAttempts bounds how often a FIFO pick is retried when another
// writer drained the chosen receipt between the read and the update.
const maxDeductAttempts = 3

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Compliance *config.ComplianceConfigHolder
	Repo       domain.Repository
	Metrics    *metrics.ComplianceMetrics `optional:"true"`
	OtelMetric *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	compliance   *config.ComplianceConfigHolder
	repo         domain.Repository
	materialrepo repository.Repository[domain.Material]
	supplierrepo repository.Repository[receptiondomain.Supplier]
	metrics      *metrics.ComplianceMetrics
	otel         *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("material.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		compliance:   p.Compliance,
		repo:         p.Repo,
		materialrepo: repository.ProvideStore[domain.Material](p.DB),
		supplierrepo: repository.ProvideStore[receptiondomain.Supplier](p.DB),
		metrics:      p.Metrics,
		otel:         p.OtelMetric,
	}
}

func (s *Service) ListMaterials(ctx context.Context, req domain.ListMaterialRequest) ([]domain.Material, error) {
	filter := &domain.Material{}
	if value := strings.TrimSpace(req.Category); value != "" {
		category, ok := domain.ParseCategory(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = category
	}
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.materialrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	materialID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.materialrepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateMaterial(ctx context.Context, req domain.MaterialRequest) (*domain.Material, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := domain.CategoryOther
	if value := trimmed(req.Category); value != "" {
		parsed, ok := domain.ParseCategory(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		category = parsed
	}
	unit := trimmed(req.Unit)
	if unit == "" {
		unit = "kg"
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.Material{
		ID:        s.genID.Generate(),
		Name:      name,
		Category:  category,
		Unit:      unit,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.materialrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateMaterial(ctx context.Context, id string, req domain.MaterialRequest) (*domain.Material, error) {
	item, err := s.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if err := setRequired(&item.Unit, req.Unit, domain.ErrInvalidUnit); err != nil {
		return nil, err
	}
	if req.Category != nil {
		category, ok := domain.ParseCategory(strings.ToUpper(trimmed(req.Category)))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = category
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.materialrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteMaterial(ctx context.Context, id string) error {
	materialID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	receipts, err := s.repo.CountReceipts(ctx, s.db, materialID)
	if err != nil {
		return err
	}
	if receipts > 0 {
		return domain.ErrMaterialInUse
	}
	rows, err := s.materialrepo.Delete(ctx, materialID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByNamePattern matches active materials whose name contains pattern,
// ignoring case. Matching happens in Go so Polish diacritics fold the same
// way on every database.
func (s *Service) FindByNamePattern(ctx context.Context, pattern string) ([]domain.Material, error) {
	needle := strings.ToLower(strings.TrimSpace(pattern))
	if needle == "" {
		return nil, domain.ErrInvalidName
	}
	items, err := s.repo.ListActiveMaterials(ctx, s.db)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Material, 0, 1)
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func (s *Service) ListReceipts(ctx context.Context, req domain.ListReceiptRequest) ([]domain.MaterialReceipt, error) {
	filter := domain.ReceiptFilter{AvailableOnly: req.AvailableOnly}
	if strings.TrimSpace(req.MaterialID) != "" {
		materialID, err := parseID(req.MaterialID, domain.ErrInvalidMaterial)
		if err != nil {
			return nil, err
		}
		filter.MaterialID = materialID
	}
	return s.repo.ListReceipts(ctx, s.db, filter)
}

func (s *Service) GetReceipt(ctx context.Context, id string) (*domain.MaterialReceipt, error) {
	receiptID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindReceiptByID(ctx, s.db, receiptID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateReceipt(ctx context.Context, req domain.ReceiptRequest) (*domain.MaterialReceipt, error) {
	materialID, err := parseID(trimmed(req.MaterialID), domain.ErrInvalidMaterial)
	if err != nil {
		return nil, err
	}
	material, err := s.materialrepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil || !material.Active {
		return nil, domain.ErrInvalidMaterial
	}
	batchNumber := trimmed(req.BatchNumber)
	if batchNumber == "" {
		return nil, domain.ErrInvalidBatchNumber
	}
	if req.Quantity == nil || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	supplierID, err := s.resolveSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	receivedAt := now
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		receivedAt = req.ReceivedAt.UTC()
	}
	createdBy := usercontext.RecordedBy(ctx)
	receipt := &domain.MaterialReceipt{
		ID:              s.genID.Generate(),
		MaterialID:      material.ID,
		SupplierID:      supplierID,
		BatchNumber:     batchNumber,
		InitialQuantity: *req.Quantity,
		Quantity:        *req.Quantity,
		ReceivedAt:      receivedAt,
		ExpiryDate:      req.ExpiryDate,
		Notes:           trimmedPtr(req.Notes),
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateReceipt(ctx, tx, receipt); err != nil {
			return err
		}
		return s.repo.CreateMovements(ctx, tx, []domain.StockMovement{{
			ID:         s.genID.Generate(),
			MaterialID: material.ID,
			ReceiptID:  receipt.ID,
			Quantity:   receipt.Quantity,
			Reason:     domain.MovementReceipt,
			CreatedBy:  createdBy,
			CreatedAt:  now,
		}})
	})
	if err != nil {
		return nil, err
	}
	receipt.Material = material
	return receipt, nil
}

// UpdateReceipt edits descriptive fields. Stock on hand changes only through
// deductions.
func (s *Service) UpdateReceipt(ctx context.Context, id string, req domain.ReceiptRequest) (*domain.MaterialReceipt, error) {
	item, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil && !req.Quantity.Equal(item.InitialQuantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if err := setRequired(&item.BatchNumber, req.BatchNumber, domain.ErrInvalidBatchNumber); err != nil {
		return nil, err
	}
	if req.SupplierID != nil {
		if item.SupplierID, err = s.resolveSupplier(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		item.ReceivedAt = req.ReceivedAt.UTC()
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.UpdateReceiptDetails(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteReceipt(ctx context.Context, id string) error {
	receiptID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	deductions, err := s.repo.CountDeductions(ctx, s.db, receiptID)
	if err != nil {
		return err
	}
	if deductions > 0 {
		return domain.ErrReceiptInUse
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", receiptID).Delete(&domain.StockMovement{}).Error; err != nil {
			return err
		}
		rows, err := s.repo.DeleteReceipt(ctx, tx, receiptID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (s *Service) ListMovements(ctx context.Context, req domain.ListMovementRequest) ([]domain.StockMovement, error) {
	filter := domain.MovementFilter{}
	var err error
	if strings.TrimSpace(req.MaterialID) != "" {
		if filter.MaterialID, err = parseID(req.MaterialID, domain.ErrInvalidMaterial); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.ReceiptID) != "" {
		if filter.ReceiptID, err = parseID(req.ReceiptID, domain.ErrInvalidID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListMovements(ctx, s.db, filter)
}

func (s *Service) Deduct(ctx context.Context, tx *gorm.DB, req domain.DeductRequest) (*domain.DeductionResult, error) {
	if req.MaterialID == 0 {
		return nil, domain.ErrInvalidMaterial
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	policy := strings.ToLower(strings.TrimSpace(req.Policy))
	if policy == "" {
		policy = s.compliance.Get().Curing.InsufficientStockPolicy
	}
	switch policy {
	case config.StockPolicySkip, config.StockPolicyReject, config.StockPolicyPartialFIFO, config.StockPolicyAllowNegative:
	default:
		return nil, domain.ErrInvalidPolicy
	}
	if tx == nil {
		tx = s.db
	}

	result := &domain.DeductionResult{
		MaterialID: req.MaterialID,
		Policy:     policy,
		Requested:  req.Amount,
		Deducted:   decimal.Zero,
		Shortfall:  decimal.Zero,
		Lines:      []domain.DeductionLine{},
	}

	var err error
	if policy == config.StockPolicyPartialFIFO {
		err = s.deductAcross(ctx, tx, req, result)
	} else {
		err = s.deductSingle(ctx, tx, req, policy, result)
	}
	if err != nil {
		s.metrics.IncStockDeduction(policy, "error")
		s.otel.RecordStockDeduction(ctx, policy, "error")
		return nil, err
	}
	result.Shortfall = req.Amount.Sub(result.Deducted)
	if result.Status == domain.DeductionNegative {
		result.Shortfall = decimal.Zero
	}

	if err := s.recordMovements(ctx, tx, req, result); err != nil {
		return nil, err
	}

	status := strings.ToLower(string(result.Status))
	s.metrics.IncStockDeduction(policy, status)
	s.otel.RecordStockDeduction(ctx, policy, status)
	if result.Status != domain.DeductionDeducted {
		obslogger.WithContext(ctx, s.log).Warn("insufficient material stock",
			zap.String("material_id", req.MaterialID.String()),
			zap.String("policy", policy),
			zap.String("status", string(result.Status)),
			zap.String("requested", req.Amount.String()),
			zap.String("deducted", result.Deducted.String()),
			zap.String("source_type", req.SourceType),
			zap.String("source_id", req.SourceID.String()),
		)
	}
	return result, nil
}

// deductSingle takes the whole amount from the oldest receipt holding more
// than it. What happens when none does depends on the policy.
func (s *Service) deductSingle(ctx context.Context, tx *gorm.DB, req domain.DeductRequest, policy string, result *domain.DeductionResult) error {
	for attempt := 0; attempt < maxDeductAttempts; attempt++ {
		receipt, err := s.repo.OldestExceeding(ctx, tx, req.MaterialID, req.Amount)
		if err != nil {
			return err
		}
		if receipt == nil {
			break
		}
		ok, err := s.repo.DecrementIfExceeding(ctx, tx, receipt.ID, req.Amount)
		if err != nil {
			return err
		}
		if ok {
			result.AddLine(receipt, req.Amount)
			result.Status = domain.DeductionDeducted
			return nil
		}
		s.metrics.IncWriteRetry("material_deduct", nil)
	}

	switch policy {
	case config.StockPolicyReject:
		return domain.ErrInsufficientStock
	case config.StockPolicyAllowNegative:
		receipt, err := s.repo.OldestReceipt(ctx, tx, req.MaterialID)
		if err != nil {
			return err
		}
		if receipt == nil {
			result.Status = domain.DeductionSkipped
			return nil
		}
		if err := s.repo.Decrement(ctx, tx, receipt.ID, req.Amount); err != nil {
			return err
		}
		result.AddLine(receipt, req.Amount)
		result.Status = domain.DeductionNegative
		return nil
	default:
		result.Status = domain.DeductionSkipped
		return nil
	}
}

// deductAcross drains receipts oldest first until the amount is covered or
// stock runs out.
func (s *Service) deductAcross(ctx context.Context, tx *gorm.DB, req domain.DeductRequest, result *domain.DeductionResult) error {
	receipts, err := s.repo.ListAvailable(ctx, tx, req.MaterialID)
	if err != nil {
		return err
	}
	remaining := req.Amount
	for i := range receipts {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, receipts[i].Quantity)
		ok, err := s.repo.DecrementIfAvailable(ctx, tx, receipts[i].ID, take)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		result.AddLine(&receipts[i], take)
		remaining = remaining.Sub(take)
	}

	switch {
	case !remaining.IsPositive():
		result.Status = domain.DeductionDeducted
	case result.Deducted.IsZero():
		result.Status = domain.DeductionSkipped
	default:
		result.Status = domain.DeductionPartial
	}
	return nil
}

func (s *Service) recordMovements(ctx context.Context, tx *gorm.DB, req domain.DeductRequest, result *domain.DeductionResult) error {
	if len(result.Lines) == 0 {
		return nil
	}
	now := s.clock.Now().UTC()
	createdBy := usercontext.RecordedBy(ctx)
	var sourceType *string
	if value := strings.TrimSpace(req.SourceType); value != "" {
		sourceType = &value
	}
	var sourceID *snowflake.ID
	if req.SourceID != 0 {
		id := req.SourceID
		sourceID = &id
	}

	movements := make([]domain.StockMovement, 0, len(result.Lines))
	for _, line := range result.Lines {
		movements = append(movements, domain.StockMovement{
			ID:         s.genID.Generate(),
			MaterialID: req.MaterialID,
			ReceiptID:  line.ReceiptID,
			Quantity:   line.Quantity.Neg(),
			Reason:     domain.MovementDeduction,
			SourceType: sourceType,
			SourceID:   sourceID,
			CreatedBy:  createdBy,
			CreatedAt:  now,
		})
	}
	return s.repo.CreateMovements(ctx, tx, movements)
}

func (s *Service) resolveSupplier(ctx context.Context, value *string) (*snowflake.ID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	supplierID, err := parseID(*value, domain.ErrInvalidSupplier)
	if err != nil {
		return nil, err
	}
	supplier, err := s.supplierrepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrInvalidSupplier
	}
	return &supplierID, nil
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
