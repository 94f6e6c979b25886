package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/waste/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.WasteType{}, &domain.WasteCollector{}, &domain.WasteRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)),
	})
}

func ptr[T any](v T) *T { return &v }

func qty(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestWasteRecordsAndTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bones, err := svc.CreateType(ctx, domain.TypeRequest{Code: ptr("02 02 02"), Name: ptr("Kości i odpady tkankowe"), Category: ptr("UPPZ kat. 3")})
	require.NoError(t, err)
	_, err = svc.CreateType(ctx, domain.TypeRequest{Code: ptr("02 02 02"), Name: ptr("Duplikat")})
	require.ErrorIs(t, err, domain.ErrDuplicateCode)

	collector, err := svc.CreateCollector(ctx, domain.CollectorRequest{Name: ptr("Utylizacja Sp. z o.o."), Email: ptr(" Biuro@Utylizacja.PL ")})
	require.NoError(t, err)
	assert.Equal(t, "biuro@utylizacja.pl", *collector.Email)

	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, amount := range []string{"120.5", "79.5"} {
		_, err := svc.CreateRecord(ctx, domain.RecordRequest{
			WasteTypeID:  ptr(bones.ID.String()),
			CollectorID:  ptr(collector.ID.String()),
			Quantity:     qty(amount),
			DisposalDate: &day,
		})
		require.NoError(t, err)
	}

	records, err := svc.ListRecords(ctx, domain.ListRecordRequest{CollectorID: collector.ID.String()})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "kg", records[0].Unit)

	totals, err := svc.TotalByType(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "02 02 02", totals[0].Code)
	assert.True(t, totals[0].Quantity.Equal(decimal.NewFromInt(200)), totals[0].Quantity.String())

	require.ErrorIs(t, svc.DeleteType(ctx, bones.ID.String()), domain.ErrTypeInUse)
	require.ErrorIs(t, svc.DeleteCollector(ctx, collector.ID.String()), domain.ErrCollectorInUse)
}

func TestWasteRecordValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	wasteType, err := svc.CreateType(ctx, domain.TypeRequest{Code: ptr("15 01 01"), Name: ptr("Opakowania z papieru")})
	require.NoError(t, err)

	_, err = svc.CreateRecord(ctx, domain.RecordRequest{WasteTypeID: ptr(wasteType.ID.String())})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{WasteTypeID: ptr(wasteType.ID.String()), Quantity: qty("-1")})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{WasteTypeID: ptr(wasteType.ID.String()), CollectorID: ptr("42"), Quantity: qty("1")})
	require.ErrorIs(t, err, domain.ErrInvalidCollector)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{WasteTypeID: ptr("42"), Quantity: qty("1")})
	require.ErrorIs(t, err, domain.ErrInvalidType)

	record, err := svc.CreateRecord(ctx, domain.RecordRequest{WasteTypeID: ptr(wasteType.ID.String()), Quantity: qty("3"), Unit: ptr("szt")})
	require.NoError(t, err)
	updated, err := svc.UpdateRecord(ctx, record.ID.String(), domain.RecordRequest{DocumentNumber: ptr("KPO/12/2024")})
	require.NoError(t, err)
	assert.Equal(t, "szt", updated.Unit)
	assert.Equal(t, "KPO/12/2024", *updated.DocumentNumber)

	require.NoError(t, svc.DeleteRecord(ctx, record.ID.String()))
	require.NoError(t, svc.DeleteType(ctx, wasteType.ID.String()))
	require.ErrorIs(t, svc.DeleteType(ctx, wasteType.ID.String()), domain.ErrNotFound)
}
