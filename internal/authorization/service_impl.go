package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTemperaturePoint   = "temperature_point"
	ObjectTemperatureReading = "temperature_reading"
	ObjectSupplier           = "supplier"
	ObjectRawMaterial        = "raw_material"
	ObjectReception          = "reception"
	ObjectMaterial           = "material"
	ObjectMaterialReceipt    = "material_receipt"
	ObjectCuringBatch        = "curing_batch"
	ObjectProduct            = "product"
	ObjectProductionBatch    = "production_batch"
	ObjectCleaningArea       = "cleaning_area"
	ObjectCleaningRecord     = "cleaning_record"
	ObjectPestControlPoint   = "pest_control_point"
	ObjectPestControlCheck   = "pest_control_check"
	ObjectAuditChecklist     = "audit_checklist"
	ObjectAuditRecord        = "audit_record"
	ObjectTraining           = "training"
	ObjectDocument           = "document"
	ObjectCCP                = "ccp"
	ObjectHazard             = "hazard"
	ObjectLabTestType        = "lab_test_type"
	ObjectLabTest            = "lab_test"
	ObjectWasteType          = "waste_type"
	ObjectWasteCollector     = "waste_collector"
	ObjectWasteRecord        = "waste_record"
	ObjectCorrectiveAction   = "corrective_action"
	ObjectReport             = "report"
	ObjectDashboard          = "dashboard"
	ObjectUser               = "user"
	ObjectActivityLog        = "activity_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const (
	roleSystem   = "role:system"
	roleAdmin    = "role:admin"
	roleManager  = "role:manager"
	roleEmployee = "role:employee"
)

// operationalObjects are the day-to-day records employees fill in.
var operationalObjects = []string{
	ObjectTemperatureReading,
	ObjectReception,
	ObjectMaterialReceipt,
	ObjectCuringBatch,
	ObjectProductionBatch,
	ObjectCleaningRecord,
	ObjectPestControlCheck,
	ObjectAuditRecord,
	ObjectTraining,
	ObjectLabTest,
	ObjectWasteRecord,
	ObjectCorrectiveAction,
}

var masterDataObjects = []string{
	ObjectTemperaturePoint,
	ObjectSupplier,
	ObjectRawMaterial,
	ObjectMaterial,
	ObjectProduct,
	ObjectCleaningArea,
	ObjectPestControlPoint,
	ObjectAuditChecklist,
	ObjectDocument,
	ObjectCCP,
	ObjectHazard,
	ObjectLabTestType,
	ObjectWasteType,
	ObjectWasteCollector,
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Enforcer    *casbin.SyncedEnforcer
	ActivitySvc activitydomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db          *gorm.DB
	log         *zap.Logger
	enforcer    *casbin.SyncedEnforcer
	activitySvc activitydomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:          p.DB,
		log:         p.Log.Named("authorization.service"),
		enforcer:    p.Enforcer,
		activitySvc: p.ActivitySvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor)
	if err != nil {
		s.recordDenied(ctx, actor, object, action)
		return err
	}
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.recordDenied(ctx, actor, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) Permissions(role string) ([][]string, error) {
	roleName := fmt.Sprintf("role:%s", strings.ToLower(strings.TrimSpace(role)))
	return s.enforcer.GetImplicitPermissionsForUser(roleName)
}

// resolveActor reads the role from the users table on every call so role
// changes apply to tokens already issued.
func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, error) {
	if actor == "system" {
		return actor, roleSystem, nil
	}
	userIDRaw, ok := strings.CutPrefix(actor, "user:")
	if !ok {
		return "", "", ErrInvalidActor
	}
	userID, err := snowflake.ParseString(userIDRaw)
	if err != nil || userID == 0 {
		return "", "", ErrInvalidActor
	}

	var row struct {
		Role   string `gorm:"column:role"`
		Active bool   `gorm:"column:active"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role, active
		 FROM users
		 WHERE id = ?
		 LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" || !row.Active {
		return "", "", ErrForbidden
	}
	return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) recordDenied(ctx context.Context, actor string, object string, action string) {
	if s.activitySvc == nil {
		return
	}
	err := s.activitySvc.Record(ctx, activitydomain.RecordRequest{
		Action:     "authorization.denied",
		TargetType: object,
		Metadata: map[string]any{
			"object":  object,
			"action":  action,
			"subject": actor,
		},
	})
	if err != nil {
		s.log.Warn("failed to record denied authorization", zap.Error(err))
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	var policies [][]string
	for _, object := range append(append([]string{}, operationalObjects...), masterDataObjects...) {
		policies = append(policies, []string{roleEmployee, object, ActionView})
	}
	policies = append(policies,
		[]string{roleEmployee, ObjectReport, ActionView},
		[]string{roleEmployee, ObjectDashboard, ActionView},
	)
	for _, object := range operationalObjects {
		policies = append(policies,
			[]string{roleEmployee, object, ActionCreate},
			[]string{roleEmployee, object, ActionUpdate},
			[]string{roleManager, object, ActionDelete},
		)
	}
	for _, object := range masterDataObjects {
		policies = append(policies,
			[]string{roleManager, object, ActionCreate},
			[]string{roleManager, object, ActionUpdate},
			[]string{roleManager, object, ActionDelete},
		)
	}
	policies = append(policies,
		[]string{roleAdmin, ObjectUser, "*"},
		[]string{roleAdmin, ObjectActivityLog, ActionView},
		[]string{roleSystem, "*", "*"},
	)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	inheritance := [][]string{
		{roleManager, roleEmployee},
		{roleAdmin, roleManager},
	}
	for _, rule := range inheritance {
		if _, err := enforcer.AddGroupingPolicy(rule); err != nil {
			return err
		}
	}
	return nil
}
