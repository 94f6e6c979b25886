package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/audit/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	carepository "github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.AuditChecklist{},
		&domain.AuditRecord{},
		&cadomain.CorrectiveAction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Observer: compliance.NewObserver(compliance.ObserverParams{
			Log:        zap.NewNop(),
			GenID:      node,
			Clock:      fake,
			Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
			Repo:       carepository.Provide(),
		}),
	})
	return svc, conn
}

func ptr[T any](v T) *T { return &v }

func results(passed, total int) domain.Results {
	out := make(domain.Results, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, domain.ItemResult{Item: string(rune('A' + i)), Passed: i < passed})
	}
	return out
}

func actionFor(t *testing.T, conn *gorm.DB, id *string) cadomain.CorrectiveAction {
	t.Helper()
	require.NotNil(t, id)
	var action cadomain.CorrectiveAction
	require.NoError(t, conn.Where("id = ?", *id).First(&action).Error)
	return action
}

func checklistItems(n int) *[]string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, string(rune('A'+i)))
	}
	return &out
}

func TestAuditScoreOpensCorrectiveAction(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	trimmedItems, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{
		Name:  ptr("Higiena zakładu"),
		Items: ptr([]string{"Posadzki", " Ściany "}),
	})
	require.NoError(t, err)
	assert.True(t, trimmedItems.Active)
	assert.Equal(t, []string{"Posadzki", "Ściany"}, []string(trimmedItems.Items))

	checklist, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{
		Name:  ptr("GMP hala rozbioru"),
		Items: checklistItems(10),
	})
	require.NoError(t, err)

	passing, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(8, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, passing.Record.Score)
	assert.Nil(t, passing.CorrectiveActionID)

	high, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(7, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 70, high.Record.Score)
	action := actionFor(t, conn, high.CorrectiveActionID)
	assert.Equal(t, cadomain.PriorityHigh, action.Priority)
	require.NotNil(t, action.SourceID)
	assert.Equal(t, high.Record.ID, *action.SourceID)

	critical, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(4, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 40, critical.Record.Score)
	assert.Equal(t, cadomain.PriorityCritical, actionFor(t, conn, critical.CorrectiveActionID).Priority)

	precomputed, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Jan Kowalski"),
		Score:       ptr(95),
	})
	require.NoError(t, err)
	assert.Equal(t, 95, precomputed.Record.Score)
	assert.Nil(t, precomputed.CorrectiveActionID)

	records, err := svc.ListRecords(ctx, domain.ListRecordRequest{ChecklistID: checklist.ID.String()})
	require.NoError(t, err)
	assert.Len(t, records, 4)

	require.ErrorIs(t, svc.DeleteChecklist(ctx, checklist.ID.String()), domain.ErrChecklistInUse)
}

func TestAuditScoreCountsUnsubmittedItemsAsFailed(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	checklist, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{
		Name:  ptr("GMP magazyn"),
		Items: checklistItems(10),
	})
	require.NoError(t, err)

	partial, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(3, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, partial.Record.Score)
	assert.Equal(t, cadomain.PriorityCritical, actionFor(t, conn, partial.CorrectiveActionID).Priority)

	_, err = svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     domain.Results{{Item: "Z", Passed: true}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidResults)

	_, err = svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     domain.Results{{Item: "A", Passed: true}, {Item: "A", Passed: true}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidResults)

	_, err = svc.UpdateRecord(ctx, partial.Record.ID.String(), domain.RecordRequest{
		Results: domain.Results{{Item: "Z", Passed: true}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidResults)

	var count int64
	require.NoError(t, conn.Model(&cadomain.CorrectiveAction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuditScoreWithEmptyChecklist(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	checklist, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{Name: ptr("Pusta")})
	require.NoError(t, err)

	_, err = svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(1, 1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidResults)
}

func TestPassedOnIgnoresItemsOffTheChecklist(t *testing.T) {
	checklist := domain.AuditChecklist{Items: []string{"A", "B", "C"}}
	record := domain.AuditRecord{Results: []domain.ItemResult{
		{Item: "A", Passed: true},
		{Item: "B", Passed: false},
		{Item: "X", Passed: true},
	}}
	assert.Equal(t, 1, record.PassedOn(checklist))

	passed, err := checklist.Tally([]domain.ItemResult{{Item: "A", Passed: true}, {Item: "C", Passed: true}})
	require.NoError(t, err)
	assert.Equal(t, 2, passed)
}

func TestResubmissionKeepsEarlierActions(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	checklist, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{Name: ptr("GMP"), Items: checklistItems(2)})
	require.NoError(t, err)

	created, err := svc.CreateRecord(ctx, domain.RecordRequest{
		ChecklistID: ptr(checklist.ID.String()),
		Auditor:     ptr("Anna Nowak"),
		Results:     results(1, 2),
	})
	require.NoError(t, err)
	require.NotNil(t, created.CorrectiveActionID)

	updated, err := svc.UpdateRecord(ctx, created.Record.ID.String(), domain.RecordRequest{Results: results(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Record.Score)
	assert.Nil(t, updated.CorrectiveActionID)

	var count int64
	require.NoError(t, conn.Model(&cadomain.CorrectiveAction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	notes, err := svc.UpdateRecord(ctx, created.Record.ID.String(), domain.RecordRequest{Notes: ptr("poprawiono")})
	require.NoError(t, err)
	assert.Equal(t, 100, notes.Record.Score)

	stored, err := svc.GetRecord(ctx, created.Record.ID.String())
	require.NoError(t, err)
	assert.Len(t, stored.Results, 2)
	assert.Equal(t, 2, stored.PassedOn(*checklist))
}

func TestRecordValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	checklist, err := svc.CreateChecklist(ctx, domain.ChecklistRequest{Name: ptr("GMP")})
	require.NoError(t, err)

	_, err = svc.CreateChecklist(ctx, domain.ChecklistRequest{Name: ptr("  ")})
	require.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{ChecklistID: ptr("42"), Auditor: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidChecklist)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{ChecklistID: ptr(checklist.ID.String())})
	require.ErrorIs(t, err, domain.ErrInvalidAuditor)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{ChecklistID: ptr(checklist.ID.String()), Auditor: ptr("x"), Score: ptr(101)})
	require.ErrorIs(t, err, domain.ErrInvalidScore)
	_, err = svc.GetRecord(ctx, "abc")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	require.NoError(t, svc.DeleteChecklist(ctx, checklist.ID.String()))
	require.ErrorIs(t, svc.DeleteChecklist(ctx, checklist.ID.String()), domain.ErrNotFound)
}

func TestResultsAcceptItemMap(t *testing.T) {
	var req domain.RecordRequest
	require.NoError(t, json.Unmarshal([]byte(`{"results":{"Ściany":false,"Posadzki":true}}`), &req))
	require.Len(t, req.Results, 2)
	assert.Equal(t, "Posadzki", req.Results[0].Item)
	assert.True(t, req.Results[0].Passed)
	assert.Equal(t, "Ściany", req.Results[1].Item)

	require.NoError(t, json.Unmarshal([]byte(`{"results":[{"item":"A","passed":true}]}`), &req))
	require.Len(t, req.Results, 1)
}
