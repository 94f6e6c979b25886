package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
	cleaningdomain "github.com/smallbiznis/haccp/internal/cleaning/domain"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	documentdomain "github.com/smallbiznis/haccp/internal/document/domain"
	haccpdomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	pestdomain "github.com/smallbiznis/haccp/internal/pestcontrol/domain"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	trainingdomain "github.com/smallbiznis/haccp/internal/training/domain"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres schema.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table owned by the application, parents first.
func Models() []any {
	return []any{
		&authdomain.User{},
		&activitydomain.Entry{},
		&haccpdomain.CCP{},
		&haccpdomain.Hazard{},
		&cadomain.CorrectiveAction{},
		&temperaturedomain.TemperaturePoint{},
		&temperaturedomain.TemperatureReading{},
		&receptiondomain.Supplier{},
		&receptiondomain.RawMaterial{},
		&receptiondomain.Reception{},
		&materialdomain.Material{},
		&materialdomain.MaterialReceipt{},
		&materialdomain.StockMovement{},
		&curingdomain.CuringBatch{},
		&productdomain.Product{},
		&productiondomain.ProductionBatch{},
		&productiondomain.BatchMaterial{},
		&cleaningdomain.CleaningArea{},
		&cleaningdomain.CleaningRecord{},
		&pestdomain.PestControlPoint{},
		&pestdomain.PestControlCheck{},
		&auditdomain.AuditChecklist{},
		&auditdomain.AuditRecord{},
		&trainingdomain.TrainingRecord{},
		&trainingdomain.TrainingParticipant{},
		&documentdomain.Document{},
		&labtestdomain.LabTestType{},
		&labtestdomain.LabTest{},
		&wastedomain.WasteType{},
		&wastedomain.WasteCollector{},
		&wastedomain.WasteRecord{},
	}
}

// AutoMigrate builds the schema from the models. Used for sqlite and mysql,
// which the embedded SQL does not target.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
