package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	carepository "github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	haccpdomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	haccpservice "github.com/smallbiznis/haccp/internal/haccpplan/service"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	productrepository "github.com/smallbiznis/haccp/internal/product/repository"
	"github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/production/repository"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	params  Params
	svc     domain.Service
	conn    *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	product *productdomain.Product
	ccp     *haccpdomain.CCP
}

func newFixture(t *testing.T, cfg config.ComplianceConfig) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&productdomain.Product{},
		&receptiondomain.Supplier{},
		&receptiondomain.RawMaterial{},
		&receptiondomain.Reception{},
		&materialdomain.Material{},
		&materialdomain.MaterialReceipt{},
		&curingdomain.CuringBatch{},
		&haccpdomain.CCP{},
		&domain.ProductionBatch{},
		&domain.BatchMaterial{},
		&cadomain.CorrectiveAction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))

	plan := haccpservice.New(haccpservice.Params{DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake})
	ccp, err := plan.CreateCCP(context.Background(), haccpdomain.CCPRequest{
		Code:          ptr("CCP-1"),
		Name:          ptr("Obróbka termiczna"),
		ProcessStep:   ptr("Parzenie"),
		Hazard:        ptr("Przeżycie patogenów"),
		CriticalLimit: ptr(">= 72°C w centrum produktu"),
	})
	require.NoError(t, err)

	product := &productdomain.Product{
		ID:        node.Generate(),
		Code:      "KIEL-WIEJ",
		Name:      "Kiełbasa wiejska",
		Unit:      "kg",
		Active:    true,
		CreatedAt: fake.Now(),
		UpdatedAt: fake.Now(),
	}
	require.NoError(t, conn.Create(product).Error)

	observer := compliance.NewObserver(compliance.ObserverParams{
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Compliance: config.NewStaticComplianceHolder(cfg),
		Repo:       carepository.Provide(),
	})

	params := Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Observer: observer,
		Repo:     repository.Provide(),
		Products: productrepository.Provide(),
		Plan:     plan,
	}
	svc := New(params)
	return &fixture{params: params, svc: svc, conn: conn, node: node, clock: fake, product: product, ccp: ccp}
}

func (f *fixture) createBatch(t *testing.T) *domain.ProductionBatch {
	t.Helper()
	qty := decimal.NewFromInt(40)
	batch, err := f.svc.Create(context.Background(), domain.CreateRequest{
		ProductID: f.product.ID.String(),
		Quantity:  &qty,
	})
	require.NoError(t, err)
	return batch
}

func (f *fixture) actions(t *testing.T) []cadomain.CorrectiveAction {
	t.Helper()
	var actions []cadomain.CorrectiveAction
	require.NoError(t, f.conn.Find(&actions).Error)
	return actions
}

func TestCreateNumbersBatchesPerProductionDate(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())

	first := f.createBatch(t)
	second := f.createBatch(t)
	assert.Equal(t, "20240312-001", first.BatchNumber)
	assert.Equal(t, "20240312-002", second.BatchNumber)
	assert.Equal(t, domain.StatusInProgress, first.Status)
	assert.Equal(t, "kg", first.Unit)

	f.clock.Advance(24 * time.Hour)
	next := f.createBatch(t)
	assert.Equal(t, "20240313-001", next.BatchNumber)
}

func TestCompleteAtThresholdIsCompliant(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	batch := f.createBatch(t)

	temp := 72.0
	resp, err := f.svc.Complete(context.Background(), batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, resp.Batch.Status)
	require.NotNil(t, resp.Batch.TemperatureCompliant)
	assert.True(t, *resp.Batch.TemperatureCompliant)
	assert.Nil(t, resp.CorrectiveActionID)
	assert.Empty(t, f.actions(t))

	released, err := f.svc.Release(context.Background(), batch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReleased, released.Status)
}

func TestCompleteBelowThresholdOpensActionOnThermalCCP(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	batch := f.createBatch(t)

	temp := 71.9
	resp, err := f.svc.Complete(context.Background(), batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.NoError(t, err)
	require.NotNil(t, resp.Batch.TemperatureCompliant)
	assert.False(t, *resp.Batch.TemperatureCompliant)
	require.NotNil(t, resp.CorrectiveActionID)

	actions := f.actions(t)
	require.Len(t, actions, 1)
	assert.Equal(t, cadomain.PriorityHigh, actions[0].Priority)
	require.NotNil(t, actions[0].Cause)
	assert.Equal(t, compliance.CauseInsufficientThermalTreatment, *actions[0].Cause)
	require.NotNil(t, actions[0].CCPID)
	assert.Equal(t, f.ccp.ID, *actions[0].CCPID)
	require.NotNil(t, actions[0].SourceID)
	assert.Equal(t, batch.ID, *actions[0].SourceID)

	_, err = f.svc.Release(context.Background(), batch.ID.String())
	require.ErrorIs(t, err, domain.ErrNotCompliant)

	blocked, err := f.svc.Block(context.Background(), batch.ID.String(), domain.BlockRequest{Reason: "Powtórna obróbka"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, blocked.Status)
}

func TestCompleteUsesProductOverride(t *testing.T) {
	cfg := config.DefaultComplianceConfig()
	cfg.Thermal.ProductOverrides = map[string]float64{"kiel-wiej": 75}
	f := newFixture(t, cfg)
	batch := f.createBatch(t)

	temp := 73.0
	resp, err := f.svc.Complete(context.Background(), batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.NoError(t, err)
	require.NotNil(t, resp.Batch.RequiredTemperature)
	assert.Equal(t, 75.0, *resp.Batch.RequiredTemperature)
	assert.False(t, *resp.Batch.TemperatureCompliant)
	assert.Len(t, f.actions(t), 1)
}

func TestCompleteRequiresFinalTemperatureAndInProgress(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	batch := f.createBatch(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, batch.ID.String(), domain.CompleteRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidFinalTemperature)

	_, err = f.svc.Release(ctx, batch.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Block(ctx, batch.ID.String(), domain.BlockRequest{Reason: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidReason)

	temp := 80.0
	_, err = f.svc.Complete(ctx, batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Release(ctx, batch.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Block(ctx, batch.ID.String(), domain.BlockRequest{Reason: "Reklamacja"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMaterialsMustReferenceExistingRows(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	ctx := context.Background()

	reception := &receptiondomain.Reception{
		ID:            f.node.Generate(),
		RawMaterialID: f.node.Generate(),
		SupplierID:    f.node.Generate(),
		BatchNumber:   "L-0312",
		Quantity:      120,
		Unit:          "kg",
		ReceivedAt:    f.clock.Now(),
		IsCompliant:   true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.conn.Omit("RawMaterial", "Supplier").Create(reception).Error)

	qty := decimal.NewFromInt(40)
	used := decimal.NewFromInt(30)
	batch, err := f.svc.Create(ctx, domain.CreateRequest{
		ProductID: f.product.ID.String(),
		Quantity:  &qty,
		Materials: []domain.MaterialRequest{
			{Kind: "raw_material", SourceID: reception.ID.String(), Quantity: &used},
		},
	})
	require.NoError(t, err)

	stored, err := f.svc.Get(ctx, batch.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Materials, 1)
	assert.Equal(t, domain.MaterialKindRawMaterial, stored.Materials[0].Kind)
	assert.Equal(t, reception.ID, stored.Materials[0].SourceID)
	assert.Equal(t, "kg", stored.Materials[0].Unit)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		ProductID: f.product.ID.String(),
		Quantity:  &qty,
		Materials: []domain.MaterialRequest{
			{Kind: "CURING_BATCH", SourceID: f.node.Generate().String(), Quantity: &used},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidMaterialSource)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		ProductID: f.product.ID.String(),
		Quantity:  &qty,
		Materials: []domain.MaterialRequest{
			{Kind: "SPICE", SourceID: reception.ID.String(), Quantity: &used},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidMaterialKind)

	empty := []domain.MaterialRequest{}
	updated, err := f.svc.Update(ctx, batch.ID.String(), domain.UpdateRequest{Materials: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Materials)

	require.NoError(t, f.svc.Delete(ctx, batch.ID.String()))
	require.ErrorIs(t, f.svc.Delete(ctx, batch.ID.String()), domain.ErrNotFound)
}

func ptr[T any](v T) *T {
	return &v
}

// racingRepo moves the batch to won right before the service's own write,
// as a concurrent request on the same batch would.
type racingRepo struct {
	domain.Repository
	won domain.Status
}

func (r racingRepo) Transition(ctx context.Context, db *gorm.DB, batch *domain.ProductionBatch, from domain.Status) (bool, error) {
	err := db.WithContext(ctx).Model(&domain.ProductionBatch{}).
		Where("id = ?", batch.ID).
		Update("status", r.won).Error
	if err != nil {
		return false, err
	}
	return r.Repository.Transition(ctx, db, batch, from)
}

func TestCompleteLosingRaceOpensNoAction(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	batch := f.createBatch(t)

	params := f.params
	params.Repo = racingRepo{Repository: f.params.Repo, won: domain.StatusCompleted}
	racing := New(params)

	temp := 60.0
	_, err := racing.Complete(context.Background(), batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, f.actions(t))

	_, err = racing.Update(context.Background(), batch.ID.String(), domain.UpdateRequest{Notes: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReleaseLosingRaceToBlock(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	batch := f.createBatch(t)

	temp := 80.0
	_, err := f.svc.Complete(context.Background(), batch.ID.String(), domain.CompleteRequest{FinalTemperature: &temp})
	require.NoError(t, err)

	params := f.params
	params.Repo = racingRepo{Repository: f.params.Repo, won: domain.StatusBlocked}
	_, err = New(params).Release(context.Background(), batch.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.svc.Get(context.Background(), batch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, stored.Status)
}
