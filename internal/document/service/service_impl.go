package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/document/domain"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/smallbiznis/haccp/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultVersion = "1.0"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[domain.Document]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("document.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Document](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Document, error) {
	filter := &domain.Document{}
	if value := strings.TrimSpace(req.Category); value != "" {
		category, ok := domain.ParseCategory(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = category
	}
	if value := strings.TrimSpace(req.Status); value != "" {
		status, ok := domain.ParseStatus(strings.ToUpper(value))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, err := s.repo.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("code", "asc", map[string]bool{"code": true, "title": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Document, error) {
	documentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || documentID == 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.DocumentRequest) (*domain.Document, error) {
	title := trimmed(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	code := normalizeCode(trimmed(req.Code))
	if code == "" {
		code = normalizeCode(title)
	}
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	category := domain.CategoryOther
	if req.Category != nil {
		parsed, ok := domain.ParseCategory(strings.ToUpper(trimmed(req.Category)))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		category = parsed
	}
	status := domain.StatusDraft
	if req.Status != nil {
		parsed, ok := domain.ParseStatus(strings.ToUpper(trimmed(req.Status)))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		status = parsed
	}
	version := trimmed(req.Version)
	if version == "" {
		version = defaultVersion
	}

	now := s.clock.Now().UTC()
	item := &domain.Document{
		ID:            s.genID.Generate(),
		Code:          code,
		Title:         title,
		Category:      category,
		Version:       version,
		FileURL:       trimmedPtr(req.FileURL),
		EffectiveDate: utc(req.EffectiveDate),
		ReviewDate:    utc(req.ReviewDate),
		Status:        status,
		Notes:         trimmedPtr(req.Notes),
		CreatedBy:     usercontext.RecordedBy(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateDates(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.DocumentRequest) (*domain.Document, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := trimmed(req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Code != nil {
		code := normalizeCode(trimmed(req.Code))
		if code == "" {
			return nil, domain.ErrInvalidCode
		}
		item.Code = code
	}
	if req.Category != nil {
		category, ok := domain.ParseCategory(strings.ToUpper(trimmed(req.Category)))
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = category
	}
	if req.Status != nil {
		status, ok := domain.ParseStatus(strings.ToUpper(trimmed(req.Status)))
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if version := trimmed(req.Version); version != "" {
		item.Version = version
	}
	if req.FileURL != nil {
		item.FileURL = trimmedPtr(req.FileURL)
	}
	if req.EffectiveDate != nil {
		item.EffectiveDate = utc(req.EffectiveDate)
	}
	if req.ReviewDate != nil {
		item.ReviewDate = utc(req.ReviewDate)
	}
	if req.Notes != nil {
		item.Notes = trimmedPtr(req.Notes)
	}
	if err := validateDates(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Save(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.log.Info("document deleted", zap.String("code", item.Code))
	return nil
}

func (s *Service) DueForReview(ctx context.Context, before time.Time) ([]domain.Document, error) {
	items, err := s.repo.Find(ctx, &domain.Document{Status: domain.StatusActive},
		option.ApplyOperator(option.Condition{Field: "review_date", Operator: option.LTE, Value: before.UTC()}),
		option.WithSortBy(option.WithQuerySortBy("review_date", "asc", map[string]bool{"review_date": true})),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// normalizeCode turns free text into an upper-case slug, so "Księga HACCP"
// becomes "KSIEGA-HACCP".
func normalizeCode(value string) string {
	if value == "" {
		return ""
	}
	return strings.ToUpper(slug.Make(value))
}

func validateDates(item *domain.Document) error {
	if item.EffectiveDate != nil && item.ReviewDate != nil && item.ReviewDate.Before(*item.EffectiveDate) {
		return domain.ErrInvalidDates
	}
	return nil
}

func utc(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	v := value.UTC()
	return &v
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
