package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/reception/domain"
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
	Repo     domain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	observer     compliance.Observer
	repo         domain.Repository
	supplierrepo repository.Repository[domain.Supplier]
	materialrepo repository.Repository[domain.RawMaterial]
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reception.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		observer:     p.Observer,
		repo:         p.Repo,
		supplierrepo: repository.ProvideStore[domain.Supplier](p.DB),
		materialrepo: repository.ProvideStore[domain.RawMaterial](p.DB),
	}
}

func (s *Service) ListSuppliers(ctx context.Context, req domain.ListSupplierRequest) ([]domain.Supplier, error) {
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	if req.Approved != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "approved", Operator: option.EQ, Value: *req.Approved}))
	}
	items, err := s.supplierrepo.Find(ctx, &domain.Supplier{}, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	supplierID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.supplierrepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierRequest) (*domain.Supplier, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	approved := false
	if req.Approved != nil {
		approved = *req.Approved
	}

	now := s.clock.Now().UTC()
	item := &domain.Supplier{
		ID:            s.genID.Generate(),
		Name:          name,
		Address:       trimmedPtr(req.Address),
		TaxID:         trimmedPtr(req.TaxID),
		VetNumber:     trimmedPtr(req.VetNumber),
		ContactPerson: trimmedPtr(req.ContactPerson),
		Phone:         trimmedPtr(req.Phone),
		Email:         email,
		Approved:      approved,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.supplierrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, req domain.SupplierRequest) (*domain.Supplier, error) {
	item, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Address != nil {
		item.Address = trimmedPtr(req.Address)
	}
	if req.TaxID != nil {
		item.TaxID = trimmedPtr(req.TaxID)
	}
	if req.VetNumber != nil {
		item.VetNumber = trimmedPtr(req.VetNumber)
	}
	if req.ContactPerson != nil {
		item.ContactPerson = trimmedPtr(req.ContactPerson)
	}
	if req.Phone != nil {
		item.Phone = trimmedPtr(req.Phone)
	}
	if req.Email != nil {
		if item.Email, err = normalizeEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if req.Approved != nil {
		item.Approved = *req.Approved
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.supplierrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	supplierID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	receptions, err := s.repo.CountBySupplier(ctx, s.db, supplierID)
	if err != nil {
		return err
	}
	if receptions > 0 {
		return domain.ErrSupplierInUse
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.RawMaterial{}).Where("supplier_id = ?", supplierID).Update("supplier_id", nil).Error; err != nil {
			return err
		}
		rows, err := s.supplierrepo.WithTrx(tx).Delete(ctx, supplierID)
		if err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrSupplierInUse
			}
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (s *Service) ListRawMaterials(ctx context.Context, req domain.ListRawMaterialRequest) ([]domain.RawMaterial, error) {
	filter := &domain.RawMaterial{}
	if strings.TrimSpace(req.SupplierID) != "" {
		supplierID, err := parseID(req.SupplierID, domain.ErrInvalidSupplier)
		if err != nil {
			return nil, err
		}
		filter.SupplierID = &supplierID
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.Category = &category
	}
	items, err := s.materialrepo.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetRawMaterial(ctx context.Context, id string) (*domain.RawMaterial, error) {
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

func (s *Service) CreateRawMaterial(ctx context.Context, req domain.RawMaterialRequest) (*domain.RawMaterial, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	unit := trimmed(req.Unit)
	if unit == "" {
		unit = "kg"
	}
	if !validLimits(req.StorageMinTemp, req.StorageMaxTemp) {
		return nil, domain.ErrInvalidLimits
	}
	supplierID, err := s.resolveSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	item := &domain.RawMaterial{
		ID:             s.genID.Generate(),
		Name:           name,
		Category:       trimmedPtr(req.Category),
		Unit:           unit,
		SupplierID:     supplierID,
		StorageMinTemp: req.StorageMinTemp,
		StorageMaxTemp: req.StorageMaxTemp,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.materialrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateRawMaterial(ctx context.Context, id string, req domain.RawMaterialRequest) (*domain.RawMaterial, error) {
	item, err := s.GetRawMaterial(ctx, id)
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
		item.Category = trimmedPtr(req.Category)
	}
	if req.SupplierID != nil {
		if item.SupplierID, err = s.resolveSupplier(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}
	if req.StorageMinTemp != nil {
		item.StorageMinTemp = req.StorageMinTemp
	}
	if req.StorageMaxTemp != nil {
		item.StorageMaxTemp = req.StorageMaxTemp
	}
	if !validLimits(item.StorageMinTemp, item.StorageMaxTemp) {
		return nil, domain.ErrInvalidLimits
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.materialrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteRawMaterial(ctx context.Context, id string) error {
	materialID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	receptions, err := s.repo.CountByRawMaterial(ctx, s.db, materialID)
	if err != nil {
		return err
	}
	if receptions > 0 {
		return domain.ErrRawMaterialInUse
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

func (s *Service) ListReceptions(ctx context.Context, req domain.ListReceptionRequest) ([]domain.Reception, error) {
	filter := domain.ReceptionFilter{
		IsCompliant: req.IsCompliant,
		From:        req.From,
		To:          req.To,
	}
	var err error
	if strings.TrimSpace(req.RawMaterialID) != "" {
		if filter.RawMaterialID, err = parseID(req.RawMaterialID, domain.ErrInvalidRawMaterial); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.SupplierID) != "" {
		if filter.SupplierID, err = parseID(req.SupplierID, domain.ErrInvalidSupplier); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) GetReception(ctx context.Context, id string) (*domain.Reception, error) {
	receptionID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, receptionID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateReception(ctx context.Context, req domain.ReceptionRequest) (*domain.CreateReceptionResponse, error) {
	material, err := s.resolveRawMaterial(ctx, req.RawMaterialID)
	if err != nil {
		return nil, err
	}
	supplierID, err := s.resolveSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplierID == nil {
		supplierID = material.SupplierID
	}
	if supplierID == nil {
		return nil, domain.ErrInvalidSupplier
	}
	batchNumber := trimmed(req.BatchNumber)
	if batchNumber == "" {
		return nil, domain.ErrInvalidBatchNumber
	}
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	unit := trimmed(req.Unit)
	if unit == "" {
		unit = material.Unit
	}
	compliant := true
	if req.IsCompliant != nil {
		compliant = *req.IsCompliant
	}

	now := s.clock.Now().UTC()
	receivedAt := now
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		receivedAt = req.ReceivedAt.UTC()
	}

	item := &domain.Reception{
		ID:            s.genID.Generate(),
		RawMaterialID: material.ID,
		SupplierID:    *supplierID,
		BatchNumber:   batchNumber,
		Quantity:      *req.Quantity,
		Unit:          unit,
		ReceivedAt:    receivedAt,
		Temperature:   req.Temperature,
		ExpiryDate:    req.ExpiryDate,
		DocumentNo:    trimmedPtr(req.DocumentNumber),
		IsCompliant:   compliant,
		Notes:         trimmedPtr(req.Notes),
		ReceivedBy:    usercontext.RecordedBy(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	outcome := compliance.EvaluateReception(material.Name, batchNumber, compliant, trimmed(req.Notes))
	outcome.SourceID = item.ID

	resp := &domain.CreateReceptionResponse{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
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

	if !compliant {
		obslogger.WithContext(ctx, s.log).Warn("non-compliant reception",
			zap.String("reception_id", item.ID.String()),
			zap.String("raw_material", material.Name),
			zap.String("batch_number", batchNumber),
		)
	}

	item.RawMaterial = material
	resp.Reception = *item
	return resp, nil
}

// UpdateReception edits the delivery record. The compliance verdict is
// evaluated once, when the reception is created.
func (s *Service) UpdateReception(ctx context.Context, id string, req domain.ReceptionRequest) (*domain.Reception, error) {
	item, err := s.GetReception(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RawMaterialID != nil {
		material, err := s.resolveRawMaterial(ctx, req.RawMaterialID)
		if err != nil {
			return nil, err
		}
		item.RawMaterialID = material.ID
	}
	if req.SupplierID != nil {
		supplierID, err := s.resolveSupplier(ctx, req.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplierID == nil {
			return nil, domain.ErrInvalidSupplier
		}
		item.SupplierID = *supplierID
	}
	if err := setRequired(&item.BatchNumber, req.BatchNumber, domain.ErrInvalidBatchNumber); err != nil {
		return nil, err
	}
	if err := setRequired(&item.Unit, req.Unit, domain.ErrInvalidUnit); err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		item.ReceivedAt = req.ReceivedAt.UTC()
	}
	if req.Temperature != nil {
		item.Temperature = req.Temperature
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}
	if req.DocumentNumber != nil {
		item.DocumentNo = trimmedPtr(req.DocumentNumber)
	}
	if req.IsCompliant != nil {
		item.IsCompliant = *req.IsCompliant
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return s.GetReception(ctx, id)
}

func (s *Service) DeleteReception(ctx context.Context, id string) error {
	receptionID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, s.db, receptionID)
	if err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrReceptionInUse
		}
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
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

func (s *Service) resolveRawMaterial(ctx context.Context, value *string) (*domain.RawMaterial, error) {
	materialID, err := parseID(trimmed(value), domain.ErrInvalidRawMaterial)
	if err != nil {
		return nil, err
	}
	material, err := s.materialrepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrInvalidRawMaterial
	}
	return material, nil
}

func normalizeEmail(value *string) (*string, error) {
	email := strings.ToLower(trimmed(value))
	if email == "" {
		return nil, nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	return &email, nil
}

func validLimits(minTemp, maxTemp *float64) bool {
	return minTemp == nil || maxTemp == nil || *minTemp <= *maxTemp
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
