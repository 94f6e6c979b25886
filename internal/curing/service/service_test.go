package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/curing/domain"
	"github.com/smallbiznis/haccp/internal/curing/repository"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	materialrepository "github.com/smallbiznis/haccp/internal/material/repository"
	materialservice "github.com/smallbiznis/haccp/internal/material/service"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	params    Params
	svc       domain.Service
	materials materialdomain.Service
	conn      *gorm.DB
	reception *receptiondomain.Reception
}

func newFixture(t *testing.T, cfg config.ComplianceConfig) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&receptiondomain.Supplier{},
		&receptiondomain.RawMaterial{},
		&receptiondomain.Reception{},
		&materialdomain.Material{},
		&materialdomain.MaterialReceipt{},
		&materialdomain.StockMovement{},
		&domain.CuringBatch{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
	holder := config.NewStaticComplianceHolder(cfg)

	materials := materialservice.New(materialservice.Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Compliance: holder,
		Repo:       materialrepository.Provide(),
	})

	reception := &receptiondomain.Reception{
		ID:            node.Generate(),
		RawMaterialID: node.Generate(),
		SupplierID:    node.Generate(),
		BatchNumber:   "L-0312",
		Quantity:      200,
		Unit:          "kg",
		ReceivedAt:    fake.Now(),
		IsCompliant:   true,
		CreatedAt:     fake.Now(),
		UpdatedAt:     fake.Now(),
	}
	require.NoError(t, conn.Omit("RawMaterial", "Supplier").Create(reception).Error)

	params := Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Compliance: holder,
		Repo:       repository.Provide(),
		Materials:  materials,
	}
	svc := New(params)
	return &fixture{params: params, svc: svc, materials: materials, conn: conn, reception: reception}
}

func ptr[T any](v T) *T { return &v }

func dec(value string) decimal.Decimal { return decimal.RequireFromString(value) }

func (f *fixture) seedSalt(t *testing.T, quantities ...string) []*materialdomain.MaterialReceipt {
	t.Helper()
	ctx := context.Background()
	material, err := f.materials.CreateMaterial(ctx, materialdomain.MaterialRequest{
		Name:     ptr("Sól peklowa"),
		Category: ptr("CURING_SALT"),
	})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	receipts := make([]*materialdomain.MaterialReceipt, 0, len(quantities))
	for i, quantity := range quantities {
		receipt, err := f.materials.CreateReceipt(ctx, materialdomain.ReceiptRequest{
			MaterialID:  ptr(material.ID.String()),
			BatchNumber: ptr("SP-" + quantity),
			Quantity:    ptr(dec(quantity)),
			ReceivedAt:  ptr(base.AddDate(0, 0, i)),
		})
		require.NoError(t, err)
		receipts = append(receipts, receipt)
	}
	return receipts
}

func (f *fixture) quantity(t *testing.T, id snowflake.ID) decimal.Decimal {
	t.Helper()
	receipt, err := f.materials.GetReceipt(context.Background(), id.String())
	require.NoError(t, err)
	return receipt.Quantity
}

func (f *fixture) dryRequest(quantity string) domain.CreateRequest {
	return domain.CreateRequest{
		ReceptionID: f.reception.ID.String(),
		Quantity:    ptr(dec(quantity)),
		Method:      "dry",
	}
}

func TestCreateDryBatchDeductsSaltFromOldestSufficientReceipt(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	receipts := f.seedSalt(t, "0.3", "1")

	batch, err := f.svc.Create(context.Background(), f.dryRequest("20"))
	require.NoError(t, err)
	require.Equal(t, "12-03", batch.BatchNumber)
	require.Equal(t, domain.StatusInProgress, batch.Status)
	require.True(t, batch.CuringSaltAmount.Equal(dec("0.5")))
	require.True(t, batch.SaltPercentage.Equal(dec("2.5")))
	require.Equal(t, batch.StartDate.AddDate(0, 0, 14), batch.PlannedEndDate)

	deduction := batch.SaltDeduction.Data()
	require.Equal(t, string(materialdomain.DeductionDeducted), deduction.Status)

	require.True(t, f.quantity(t, receipts[0].ID).Equal(dec("0.3")))
	require.True(t, f.quantity(t, receipts[1].ID).Equal(dec("0.5")))
}

func TestCreateDryBatchSkipsWhenNoReceiptCovers(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	receipts := f.seedSalt(t, "0.3")

	batch, err := f.svc.Create(context.Background(), f.dryRequest("20"))
	require.NoError(t, err)
	require.Equal(t, string(materialdomain.DeductionSkipped), batch.SaltDeduction.Data().Status)
	require.True(t, f.quantity(t, receipts[0].ID).Equal(dec("0.3")))

	stored, err := f.svc.Get(context.Background(), batch.ID.String())
	require.NoError(t, err)
	require.Equal(t, string(materialdomain.DeductionSkipped), stored.SaltDeduction.Data().Status)
}

func TestCreateDryBatchRejectPolicyRollsBack(t *testing.T) {
	cfg := config.DefaultComplianceConfig()
	cfg.Curing.InsufficientStockPolicy = config.StockPolicyReject
	f := newFixture(t, cfg)
	f.seedSalt(t, "0.3")

	_, err := f.svc.Create(context.Background(), f.dryRequest("20"))
	require.ErrorIs(t, err, materialdomain.ErrInsufficientStock)

	var count int64
	require.NoError(t, f.conn.Model(&domain.CuringBatch{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBatchNumbersGetRunningSuffix(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())

	numbers := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		batch, err := f.svc.Create(context.Background(), f.dryRequest("10"))
		require.NoError(t, err)
		numbers = append(numbers, batch.BatchNumber)
		require.Equal(t, domain.DeductionNoMaterial, batch.SaltDeduction.Data().Status)
	}
	require.Equal(t, []string{"12-03", "12-03-2", "12-03-3"}, numbers)
}

func TestCreateInjectionBatchComputesBrine(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	receipts := f.seedSalt(t, "5")

	batch, err := f.svc.Create(context.Background(), domain.CreateRequest{
		ReceptionID:            f.reception.ID.String(),
		Quantity:               ptr(dec("20")),
		Method:                 "INJECTION",
		BrineSaltConcentration: ptr(dec("8")),
	})
	require.NoError(t, err)
	require.True(t, batch.BrineQuantity.Equal(dec("2")))
	require.Nil(t, batch.CuringSaltAmount)
	require.Equal(t, batch.StartDate.AddDate(0, 0, 3), batch.PlannedEndDate)
	require.Equal(t, domain.DeductionNotRequired, batch.SaltDeduction.Data().Status)
	require.True(t, f.quantity(t, receipts[0].ID).Equal(dec("5")))
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	ctx := context.Background()

	batch, err := f.svc.Create(ctx, f.dryRequest("10"))
	require.NoError(t, err)

	completed, err := f.svc.Complete(ctx, batch.ID.String(), domain.CompleteRequest{Temperature: ptr(3.5)})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.ActualEndDate)

	_, err = f.svc.Complete(ctx, batch.ID.String(), domain.CompleteRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Cancel(ctx, batch.ID.String(), domain.CancelRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Update(ctx, batch.ID.String(), domain.UpdateRequest{Notes: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{ReceptionID: "42", Quantity: ptr(dec("1")), Method: "DRY"})
	require.ErrorIs(t, err, domain.ErrInvalidReception)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ReceptionID: f.reception.ID.String(), Quantity: ptr(dec("0")), Method: "DRY"})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Create(ctx, domain.CreateRequest{ReceptionID: f.reception.ID.String(), Quantity: ptr(dec("1")), Method: "SMOKE"})
	require.ErrorIs(t, err, domain.ErrInvalidMethod)
}

// racingRepo cancels the batch right before the service's own write, as a
// concurrent request on the same batch would.
type racingRepo struct {
	domain.Repository
}

func (r racingRepo) Transition(ctx context.Context, db *gorm.DB, batch *domain.CuringBatch, from domain.Status) (bool, error) {
	err := db.WithContext(ctx).Model(&domain.CuringBatch{}).
		Where("id = ?", batch.ID).
		Update("status", domain.StatusCancelled).Error
	if err != nil {
		return false, err
	}
	return r.Repository.Transition(ctx, db, batch, from)
}

func TestCompleteLosingRaceKeepsWinnerStatus(t *testing.T) {
	f := newFixture(t, config.DefaultComplianceConfig())
	ctx := context.Background()

	batch, err := f.svc.Create(ctx, f.dryRequest("10"))
	require.NoError(t, err)

	params := f.params
	params.Repo = racingRepo{Repository: f.params.Repo}
	_, err = New(params).Complete(ctx, batch.ID.String(), domain.CompleteRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.svc.Get(ctx, batch.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, stored.Status)
	require.Nil(t, stored.ActualEndDate)
}
