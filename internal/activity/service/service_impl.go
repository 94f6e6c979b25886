package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/activity/domain"
	"github.com/smallbiznis/haccp/internal/activity/masking"
	"github.com/smallbiznis/haccp/internal/clock"
	obscontext "github.com/smallbiznis/haccp/internal/observability/context"
	obsmetrics "github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("activity.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) error {
	action := strings.TrimSpace(req.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	targetType := strings.TrimSpace(req.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	actorType, actorID := resolveActor(ctx)
	entry := domain.Entry{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    normalize(actorID),
		Action:     action,
		TargetType: targetType,
		TargetID:   normalize(req.TargetID),
		RequestID:  normalize(obscontext.RequestIDFromContext(ctx)),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if metadata := masking.MaskMetadata(req.Metadata); metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}
	ipAddress, userAgent := obscontext.ClientFromContext(ctx)
	entry.IPAddress = normalize(ipAddress)
	entry.UserAgent = normalize(userAgent)

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write activity log", zap.String("action", action), zap.Error(err))
		return err
	}
	s.metrics.RecordActivity(ctx, targetType)
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}
	if _, err := req.Pagination.Cursor(); err != nil {
		return domain.ListResponse{}, domain.ErrInvalidPageToken
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorID:    req.ActorID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Page:       req.Pagination,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	entries, info := pagination.Page(items, req.Pagination.Size(), func(e domain.Entry) pagination.Cursor {
		return pagination.Cursor{ID: e.ID.Int64(), CreatedAt: e.CreatedAt}
	})
	if entries == nil {
		entries = []domain.Entry{}
	}
	return domain.ListResponse{PageInfo: info, Entries: entries}, nil
}

func resolveActor(ctx context.Context) (string, string) {
	if userID, ok := usercontext.UserIDFromContext(ctx); ok {
		return string(domain.ActorTypeUser), userID.String()
	}
	if actorType, actorID := obscontext.ActorFromContext(ctx); actorType != "" {
		return actorType, actorID
	}
	return string(domain.ActorTypeSystem), ""
}

func normalize(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
