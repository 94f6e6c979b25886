package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"gorm.io/gorm"
)

// Repository is the read side used to assemble reports. It never writes.
type Repository interface {
	FindAuditRecord(ctx context.Context, db *gorm.DB, id snowflake.ID) (*auditdomain.AuditRecord, error)
	FindChecklist(ctx context.Context, db *gorm.DB, id snowflake.ID) (*auditdomain.AuditChecklist, error)
	FindProductionBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) (*productiondomain.ProductionBatch, error)
	FindTemperaturePoint(ctx context.Context, db *gorm.DB, id snowflake.ID) (*temperaturedomain.TemperaturePoint, error)
	ListReadings(ctx context.Context, db *gorm.DB, filter ReadingFilter) ([]temperaturedomain.TemperatureReading, error)
	ListCorrectiveActions(ctx context.Context, db *gorm.DB, filter CorrectiveActionFilter) ([]cadomain.CorrectiveAction, error)
}

type ReadingFilter struct {
	PointID snowflake.ID
	From    time.Time
	To      time.Time
}

type CorrectiveActionFilter struct {
	Status   cadomain.Status
	Priority cadomain.Priority
	From     *time.Time
	To       *time.Time
}
