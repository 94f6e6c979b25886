package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/audit/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Observer compliance.Observer
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	observer      compliance.Observer
	checklistrepo repository.Repository[domain.AuditChecklist]
	recordrepo    repository.Repository[domain.AuditRecord]
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("audit.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		observer:      p.Observer,
		checklistrepo: repository.ProvideStore[domain.AuditChecklist](p.DB),
		recordrepo:    repository.ProvideStore[domain.AuditRecord](p.DB),
	}
}

func (s *Service) ListChecklists(ctx context.Context, req domain.ListChecklistRequest) ([]domain.AuditChecklist, error) {
	filter := &domain.AuditChecklist{}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.Category = &category
	}
	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	}
	if req.Active != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: *req.Active}))
	}
	items, err := s.checklistrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetChecklist(ctx context.Context, id string) (*domain.AuditChecklist, error) {
	checklistID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.checklistrepo.FindByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) CreateChecklist(ctx context.Context, req domain.ChecklistRequest) (*domain.AuditChecklist, error) {
	name := trimmed(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	var items []string
	if req.Items != nil {
		var err error
		if items, err = normalizeItems(*req.Items); err != nil {
			return nil, err
		}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	item := &domain.AuditChecklist{
		ID:        s.genID.Generate(),
		Name:      name,
		Category:  trimmedPtr(req.Category),
		Items:     datatypes.NewJSONSlice(items),
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.checklistrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateChecklist(ctx context.Context, id string, req domain.ChecklistRequest) (*domain.AuditChecklist, error) {
	item, err := s.GetChecklist(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := setRequired(&item.Name, req.Name, domain.ErrInvalidName); err != nil {
		return nil, err
	}
	if req.Category != nil {
		item.Category = trimmedPtr(req.Category)
	}
	if req.Items != nil {
		items, err := normalizeItems(*req.Items)
		if err != nil {
			return nil, err
		}
		item.Items = datatypes.NewJSONSlice(items)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.checklistrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteChecklist(ctx context.Context, id string) error {
	checklistID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	count, err := s.recordrepo.Count(ctx, &domain.AuditRecord{ChecklistID: checklistID})
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrChecklistInUse
	}
	rows, err := s.checklistrepo.Delete(ctx, checklistID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ListRecords(ctx context.Context, req domain.ListRecordRequest) ([]domain.AuditRecord, error) {
	filter := &domain.AuditRecord{}
	if strings.TrimSpace(req.ChecklistID) != "" {
		checklistID, err := parseID(req.ChecklistID, domain.ErrInvalidChecklist)
		if err != nil {
			return nil, err
		}
		filter.ChecklistID = checklistID
	}

	options := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("audit_date", "desc", map[string]bool{"audit_date": true, "score": true})),
	}
	if req.From != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "audit_date", Operator: option.GTE, Value: req.From.UTC()}))
	}
	if req.To != nil {
		options = append(options, option.ApplyOperator(option.Condition{Field: "audit_date", Operator: option.LTE, Value: req.To.UTC()}))
	}

	items, err := s.recordrepo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) GetRecord(ctx context.Context, id string) (*domain.AuditRecord, error) {
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
	return item, nil
}

func (s *Service) CreateRecord(ctx context.Context, req domain.RecordRequest) (*domain.RecordResponse, error) {
	checklistID, err := parseID(trimmed(req.ChecklistID), domain.ErrInvalidChecklist)
	if err != nil {
		return nil, err
	}
	checklist, err := s.checklistrepo.FindByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, domain.ErrInvalidChecklist
	}
	auditor := trimmed(req.Auditor)
	if auditor == "" {
		return nil, domain.ErrInvalidAuditor
	}
	results, err := normalizeResults(req.Results)
	if err != nil {
		return nil, err
	}
	score, err := scoreOf(checklist, results, req.Score)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	auditDate := now
	if req.AuditDate != nil && !req.AuditDate.IsZero() {
		auditDate = req.AuditDate.UTC()
	}
	record := &domain.AuditRecord{
		ID:          s.genID.Generate(),
		ChecklistID: checklist.ID,
		AuditDate:   auditDate,
		Auditor:     auditor,
		Results:     datatypes.NewJSONSlice(results),
		Score:       score,
		Notes:       trimmedPtr(req.Notes),
		CreatedBy:   usercontext.RecordedBy(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.persist(ctx, checklist, record, func(tx *gorm.DB) error {
		return s.recordrepo.WithTrx(tx).Create(ctx, record)
	})
}

// UpdateRecord recomputes the score. A new corrective action may be opened;
// actions opened by earlier submissions are left alone.
func (s *Service) UpdateRecord(ctx context.Context, id string, req domain.RecordRequest) (*domain.RecordResponse, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChecklistID != nil {
		checklistID, err := parseID(trimmed(req.ChecklistID), domain.ErrInvalidChecklist)
		if err != nil {
			return nil, err
		}
		record.ChecklistID = checklistID
	}
	checklist, err := s.checklistrepo.FindByID(ctx, record.ChecklistID)
	if err != nil {
		return nil, err
	}
	if checklist == nil {
		return nil, domain.ErrInvalidChecklist
	}

	if err := setRequired(&record.Auditor, req.Auditor, domain.ErrInvalidAuditor); err != nil {
		return nil, err
	}
	if req.AuditDate != nil && !req.AuditDate.IsZero() {
		record.AuditDate = req.AuditDate.UTC()
	}
	if req.Notes != nil {
		record.Notes = trimmedPtr(req.Notes)
	}

	switch {
	case req.Results != nil:
		results, err := normalizeResults(req.Results)
		if err != nil {
			return nil, err
		}
		if record.Score, err = scoreOf(checklist, results, nil); err != nil {
			return nil, err
		}
		record.Results = datatypes.NewJSONSlice(results)
	case req.Score != nil:
		if record.Score, err = scoreOf(checklist, nil, req.Score); err != nil {
			return nil, err
		}
		record.Results = datatypes.NewJSONSlice([]domain.ItemResult{})
	case len(record.Results) > 0:
		if record.Score, err = scoreOf(checklist, record.Results, nil); err != nil {
			return nil, err
		}
	}

	record.UpdatedAt = s.clock.Now().UTC()
	return s.persist(ctx, checklist, record, func(tx *gorm.DB) error {
		return s.recordrepo.WithTrx(tx).Save(ctx, record)
	})
}

func (s *Service) persist(ctx context.Context, checklist *domain.AuditChecklist, record *domain.AuditRecord, write func(tx *gorm.DB) error) (*domain.RecordResponse, error) {
	thresholds := s.observer.Config().Audit
	outcome := compliance.EvaluateAudit(checklist.Name, record.Score, thresholds.Threshold, thresholds.CriticalThreshold)
	outcome.SourceID = record.ID

	resp := &domain.RecordResponse{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := write(tx); err != nil {
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

	if !outcome.Compliant {
		obslogger.WithContext(ctx, s.log).Warn("audit below threshold",
			zap.String("audit_record_id", record.ID.String()),
			zap.String("checklist", checklist.Name),
			zap.Int("score", record.Score),
		)
	}

	resp.Record = *record
	return resp, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	recordID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	rows, err := s.recordrepo.Delete(ctx, recordID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scoreOf scores results against every checklist item, so items left out of
// the submission count as failed. The submitted score only counts when there
// are no results.
func scoreOf(checklist *domain.AuditChecklist, results []domain.ItemResult, submitted *int) (int, error) {
	if len(results) > 0 {
		passed, err := checklist.Tally(results)
		if err != nil {
			return 0, err
		}
		return compliance.ScoreAudit(passed, len(checklist.Items)), nil
	}
	if submitted == nil {
		return 0, nil
	}
	if *submitted < 0 || *submitted > 100 {
		return 0, domain.ErrInvalidScore
	}
	return *submitted, nil
}

func normalizeResults(results domain.Results) ([]domain.ItemResult, error) {
	out := make([]domain.ItemResult, 0, len(results))
	for _, result := range results {
		item := strings.TrimSpace(result.Item)
		if item == "" {
			return nil, domain.ErrInvalidResults
		}
		out = append(out, domain.ItemResult{
			Item:   item,
			Passed: result.Passed,
			Notes:  trimmedPtr(result.Notes),
		})
	}
	return out, nil
}

func normalizeItems(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, domain.ErrInvalidItems
		}
		out = append(out, item)
	}
	return out, nil
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
