package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/haccp/internal/activity"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	"github.com/smallbiznis/haccp/internal/audit"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	"github.com/smallbiznis/haccp/internal/auth"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/internal/authorization"
	"github.com/smallbiznis/haccp/internal/cleaning"
	cleaningdomain "github.com/smallbiznis/haccp/internal/cleaning/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/correctiveaction"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/smallbiznis/haccp/internal/curing"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	"github.com/smallbiznis/haccp/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/haccp/internal/dashboard/domain"
	"github.com/smallbiznis/haccp/internal/document"
	documentdomain "github.com/smallbiznis/haccp/internal/document/domain"
	"github.com/smallbiznis/haccp/internal/haccpplan"
	haccpplandomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	"github.com/smallbiznis/haccp/internal/labtest"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
	"github.com/smallbiznis/haccp/internal/material"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	"github.com/smallbiznis/haccp/internal/observability"
	obsmiddleware "github.com/smallbiznis/haccp/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/haccp/internal/observability/metrics"
	obstracing "github.com/smallbiznis/haccp/internal/observability/tracing"
	"github.com/smallbiznis/haccp/internal/pestcontrol"
	pestcontroldomain "github.com/smallbiznis/haccp/internal/pestcontrol/domain"
	"github.com/smallbiznis/haccp/internal/product"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	"github.com/smallbiznis/haccp/internal/production"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/ratelimit"
	"github.com/smallbiznis/haccp/internal/reception"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	"github.com/smallbiznis/haccp/internal/report"
	reportdomain "github.com/smallbiznis/haccp/internal/report/domain"
	"github.com/smallbiznis/haccp/internal/temperature"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"github.com/smallbiznis/haccp/internal/training"
	trainingdomain "github.com/smallbiznis/haccp/internal/training/domain"
	"github.com/smallbiznis/haccp/internal/waste"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	activity.Module,
	authorization.Module,
	auth.Module,
	compliance.Module,
	correctiveaction.Module,
	haccpplan.Module,
	temperature.Module,
	reception.Module,
	material.Module,
	curing.Module,
	product.Module,
	production.Module,
	cleaning.Module,
	pestcontrol.Module,
	audit.Module,
	training.Module,
	document.Module,
	labtest.Module,
	waste.Module,
	report.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine              *gin.Engine
	cfg                 config.Config
	log                 *zap.Logger
	clock               clock.Clock
	authsvc             authdomain.Service
	authzSvc            authorization.Service
	activitySvc         activitydomain.Service
	temperatureSvc      temperaturedomain.Service
	receptionSvc        receptiondomain.Service
	materialSvc         materialdomain.Service
	curingSvc           curingdomain.Service
	productSvc          productdomain.Service
	productionSvc       productiondomain.Service
	cleaningSvc         cleaningdomain.Service
	pestControlSvc      pestcontroldomain.Service
	auditSvc            auditdomain.Service
	trainingSvc         trainingdomain.Service
	documentSvc         documentdomain.Service
	haccpPlanSvc        haccpplandomain.Service
	labTestSvc          labtestdomain.Service
	wasteSvc            wastedomain.Service
	correctiveActionSvc cadomain.Service
	reportSvc           reportdomain.Service
	dashboardSvc        dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin                 *gin.Engine
	Cfg                 config.Config
	Log                 *zap.Logger
	Clock               clock.Clock
	Authsvc             authdomain.Service
	AuthzSvc            authorization.Service
	ActivitySvc         activitydomain.Service
	TemperatureSvc      temperaturedomain.Service
	ReceptionSvc        receptiondomain.Service
	MaterialSvc         materialdomain.Service
	CuringSvc           curingdomain.Service
	ProductSvc          productdomain.Service
	ProductionSvc       productiondomain.Service
	CleaningSvc         cleaningdomain.Service
	PestControlSvc      pestcontroldomain.Service
	AuditSvc            auditdomain.Service
	TrainingSvc         trainingdomain.Service
	DocumentSvc         documentdomain.Service
	HACCPPlanSvc        haccpplandomain.Service
	LabTestSvc          labtestdomain.Service
	WasteSvc            wastedomain.Service
	CorrectiveActionSvc cadomain.Service
	ReportSvc           reportdomain.Service
	DashboardSvc        dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:              p.Gin,
		cfg:                 p.Cfg,
		log:                 p.Log.Named("http.server"),
		clock:               p.Clock,
		authsvc:             p.Authsvc,
		authzSvc:            p.AuthzSvc,
		activitySvc:         p.ActivitySvc,
		temperatureSvc:      p.TemperatureSvc,
		receptionSvc:        p.ReceptionSvc,
		materialSvc:         p.MaterialSvc,
		curingSvc:           p.CuringSvc,
		productSvc:          p.ProductSvc,
		productionSvc:       p.ProductionSvc,
		cleaningSvc:         p.CleaningSvc,
		pestControlSvc:      p.PestControlSvc,
		auditSvc:            p.AuditSvc,
		trainingSvc:         p.TrainingSvc,
		documentSvc:         p.DocumentSvc,
		haccpPlanSvc:        p.HACCPPlanSvc,
		labTestSvc:          p.LabTestSvc,
		wasteSvc:            p.WasteSvc,
		correctiveActionSvc: p.CorrectiveActionSvc,
		reportSvc:           p.ReportSvc,
		dashboardSvc:        p.DashboardSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.DashboardSummary)

	// -------- Temperature --------
	api.GET("/temperature-points", s.authorize(authorization.ObjectTemperaturePoint, authorization.ActionView), s.ListTemperaturePoints)
	api.POST("/temperature-points", s.authorize(authorization.ObjectTemperaturePoint, authorization.ActionCreate), s.CreateTemperaturePoint)
	api.GET("/temperature-points/:id", s.authorize(authorization.ObjectTemperaturePoint, authorization.ActionView), s.GetTemperaturePoint)
	api.PUT("/temperature-points/:id", s.authorize(authorization.ObjectTemperaturePoint, authorization.ActionUpdate), s.UpdateTemperaturePoint)
	api.DELETE("/temperature-points/:id", s.authorize(authorization.ObjectTemperaturePoint, authorization.ActionDelete), s.DeleteTemperaturePoint)
	api.GET("/temperature-readings", s.authorize(authorization.ObjectTemperatureReading, authorization.ActionView), s.ListTemperatureReadings)
	api.POST("/temperature-readings", s.authorize(authorization.ObjectTemperatureReading, authorization.ActionCreate), s.CreateTemperatureReading)
	api.DELETE("/temperature-readings/:id", s.authorize(authorization.ObjectTemperatureReading, authorization.ActionDelete), s.DeleteTemperatureReading)

	// -------- Reception --------
	api.GET("/suppliers", s.authorize(authorization.ObjectSupplier, authorization.ActionView), s.ListSuppliers)
	api.POST("/suppliers", s.authorize(authorization.ObjectSupplier, authorization.ActionCreate), s.CreateSupplier)
	api.GET("/suppliers/:id", s.authorize(authorization.ObjectSupplier, authorization.ActionView), s.GetSupplier)
	api.PUT("/suppliers/:id", s.authorize(authorization.ObjectSupplier, authorization.ActionUpdate), s.UpdateSupplier)
	api.DELETE("/suppliers/:id", s.authorize(authorization.ObjectSupplier, authorization.ActionDelete), s.DeleteSupplier)
	api.GET("/raw-materials", s.authorize(authorization.ObjectRawMaterial, authorization.ActionView), s.ListRawMaterials)
	api.POST("/raw-materials", s.authorize(authorization.ObjectRawMaterial, authorization.ActionCreate), s.CreateRawMaterial)
	api.GET("/raw-materials/:id", s.authorize(authorization.ObjectRawMaterial, authorization.ActionView), s.GetRawMaterial)
	api.PUT("/raw-materials/:id", s.authorize(authorization.ObjectRawMaterial, authorization.ActionUpdate), s.UpdateRawMaterial)
	api.DELETE("/raw-materials/:id", s.authorize(authorization.ObjectRawMaterial, authorization.ActionDelete), s.DeleteRawMaterial)
	api.GET("/receptions", s.authorize(authorization.ObjectReception, authorization.ActionView), s.ListReceptions)
	api.POST("/receptions", s.authorize(authorization.ObjectReception, authorization.ActionCreate), s.CreateReception)
	api.GET("/receptions/:id", s.authorize(authorization.ObjectReception, authorization.ActionView), s.GetReception)
	api.PUT("/receptions/:id", s.authorize(authorization.ObjectReception, authorization.ActionUpdate), s.UpdateReception)
	api.DELETE("/receptions/:id", s.authorize(authorization.ObjectReception, authorization.ActionDelete), s.DeleteReception)

	// -------- Materials --------
	api.GET("/materials", s.authorize(authorization.ObjectMaterial, authorization.ActionView), s.ListMaterials)
	api.POST("/materials", s.authorize(authorization.ObjectMaterial, authorization.ActionCreate), s.CreateMaterial)
	api.GET("/materials/:id", s.authorize(authorization.ObjectMaterial, authorization.ActionView), s.GetMaterial)
	api.PUT("/materials/:id", s.authorize(authorization.ObjectMaterial, authorization.ActionUpdate), s.UpdateMaterial)
	api.DELETE("/materials/:id", s.authorize(authorization.ObjectMaterial, authorization.ActionDelete), s.DeleteMaterial)
	api.GET("/material-receipts", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionView), s.ListMaterialReceipts)
	api.POST("/material-receipts", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionCreate), s.CreateMaterialReceipt)
	api.GET("/material-receipts/:id", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionView), s.GetMaterialReceipt)
	api.PUT("/material-receipts/:id", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionUpdate), s.UpdateMaterialReceipt)
	api.DELETE("/material-receipts/:id", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionDelete), s.DeleteMaterialReceipt)
	api.GET("/stock-movements", s.authorize(authorization.ObjectMaterialReceipt, authorization.ActionView), s.ListStockMovements)

	// -------- Curing --------
	api.GET("/curing-batches", s.authorize(authorization.ObjectCuringBatch, authorization.ActionView), s.ListCuringBatches)
	api.POST("/curing-batches", s.authorize(authorization.ObjectCuringBatch, authorization.ActionCreate), s.CreateCuringBatch)
	api.GET("/curing-batches/:id", s.authorize(authorization.ObjectCuringBatch, authorization.ActionView), s.GetCuringBatch)
	api.PUT("/curing-batches/:id", s.authorize(authorization.ObjectCuringBatch, authorization.ActionUpdate), s.UpdateCuringBatch)
	api.POST("/curing-batches/:id/complete", s.authorize(authorization.ObjectCuringBatch, authorization.ActionUpdate), s.CompleteCuringBatch)
	api.POST("/curing-batches/:id/cancel", s.authorize(authorization.ObjectCuringBatch, authorization.ActionUpdate), s.CancelCuringBatch)
	api.DELETE("/curing-batches/:id", s.authorize(authorization.ObjectCuringBatch, authorization.ActionDelete), s.DeleteCuringBatch)

	// -------- Products --------
	api.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	api.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	api.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
	api.PUT("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	api.POST("/products/:id/archive", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.ArchiveProduct)
	api.DELETE("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	// -------- Production --------
	api.GET("/production-batches", s.authorize(authorization.ObjectProductionBatch, authorization.ActionView), s.ListProductionBatches)
	api.POST("/production-batches", s.authorize(authorization.ObjectProductionBatch, authorization.ActionCreate), s.CreateProductionBatch)
	api.GET("/production-batches/:id", s.authorize(authorization.ObjectProductionBatch, authorization.ActionView), s.GetProductionBatch)
	api.PUT("/production-batches/:id", s.authorize(authorization.ObjectProductionBatch, authorization.ActionUpdate), s.UpdateProductionBatch)
	api.POST("/production-batches/:id/complete", s.authorize(authorization.ObjectProductionBatch, authorization.ActionUpdate), s.CompleteProductionBatch)
	api.POST("/production-batches/:id/release", s.authorize(authorization.ObjectProductionBatch, authorization.ActionUpdate), s.ReleaseProductionBatch)
	api.POST("/production-batches/:id/block", s.authorize(authorization.ObjectProductionBatch, authorization.ActionUpdate), s.BlockProductionBatch)
	api.DELETE("/production-batches/:id", s.authorize(authorization.ObjectProductionBatch, authorization.ActionDelete), s.DeleteProductionBatch)

	// -------- Cleaning --------
	api.GET("/cleaning-areas", s.authorize(authorization.ObjectCleaningArea, authorization.ActionView), s.ListCleaningAreas)
	api.POST("/cleaning-areas", s.authorize(authorization.ObjectCleaningArea, authorization.ActionCreate), s.CreateCleaningArea)
	api.GET("/cleaning-areas/:id", s.authorize(authorization.ObjectCleaningArea, authorization.ActionView), s.GetCleaningArea)
	api.PUT("/cleaning-areas/:id", s.authorize(authorization.ObjectCleaningArea, authorization.ActionUpdate), s.UpdateCleaningArea)
	api.DELETE("/cleaning-areas/:id", s.authorize(authorization.ObjectCleaningArea, authorization.ActionDelete), s.DeleteCleaningArea)
	api.GET("/cleaning-records", s.authorize(authorization.ObjectCleaningRecord, authorization.ActionView), s.ListCleaningRecords)
	api.POST("/cleaning-records", s.authorize(authorization.ObjectCleaningRecord, authorization.ActionCreate), s.CreateCleaningRecord)
	api.PUT("/cleaning-records/:id", s.authorize(authorization.ObjectCleaningRecord, authorization.ActionUpdate), s.UpdateCleaningRecord)
	api.DELETE("/cleaning-records/:id", s.authorize(authorization.ObjectCleaningRecord, authorization.ActionDelete), s.DeleteCleaningRecord)

	// -------- Pest control --------
	api.GET("/pest-control-points", s.authorize(authorization.ObjectPestControlPoint, authorization.ActionView), s.ListPestControlPoints)
	api.POST("/pest-control-points", s.authorize(authorization.ObjectPestControlPoint, authorization.ActionCreate), s.CreatePestControlPoint)
	api.GET("/pest-control-points/:id", s.authorize(authorization.ObjectPestControlPoint, authorization.ActionView), s.GetPestControlPoint)
	api.PUT("/pest-control-points/:id", s.authorize(authorization.ObjectPestControlPoint, authorization.ActionUpdate), s.UpdatePestControlPoint)
	api.DELETE("/pest-control-points/:id", s.authorize(authorization.ObjectPestControlPoint, authorization.ActionDelete), s.DeletePestControlPoint)
	api.GET("/pest-control-checks", s.authorize(authorization.ObjectPestControlCheck, authorization.ActionView), s.ListPestControlChecks)
	api.POST("/pest-control-checks", s.authorize(authorization.ObjectPestControlCheck, authorization.ActionCreate), s.CreatePestControlCheck)
	api.PUT("/pest-control-checks/:id", s.authorize(authorization.ObjectPestControlCheck, authorization.ActionUpdate), s.UpdatePestControlCheck)
	api.DELETE("/pest-control-checks/:id", s.authorize(authorization.ObjectPestControlCheck, authorization.ActionDelete), s.DeletePestControlCheck)

	// -------- Audits --------
	api.GET("/audit-checklists", s.authorize(authorization.ObjectAuditChecklist, authorization.ActionView), s.ListAuditChecklists)
	api.POST("/audit-checklists", s.authorize(authorization.ObjectAuditChecklist, authorization.ActionCreate), s.CreateAuditChecklist)
	api.GET("/audit-checklists/:id", s.authorize(authorization.ObjectAuditChecklist, authorization.ActionView), s.GetAuditChecklist)
	api.PUT("/audit-checklists/:id", s.authorize(authorization.ObjectAuditChecklist, authorization.ActionUpdate), s.UpdateAuditChecklist)
	api.DELETE("/audit-checklists/:id", s.authorize(authorization.ObjectAuditChecklist, authorization.ActionDelete), s.DeleteAuditChecklist)
	api.GET("/audit-records", s.authorize(authorization.ObjectAuditRecord, authorization.ActionView), s.ListAuditRecords)
	api.POST("/audit-records", s.authorize(authorization.ObjectAuditRecord, authorization.ActionCreate), s.CreateAuditRecord)
	api.GET("/audit-records/:id", s.authorize(authorization.ObjectAuditRecord, authorization.ActionView), s.GetAuditRecord)
	api.PUT("/audit-records/:id", s.authorize(authorization.ObjectAuditRecord, authorization.ActionUpdate), s.UpdateAuditRecord)
	api.DELETE("/audit-records/:id", s.authorize(authorization.ObjectAuditRecord, authorization.ActionDelete), s.DeleteAuditRecord)

	// -------- Training --------
	api.GET("/trainings", s.authorize(authorization.ObjectTraining, authorization.ActionView), s.ListTrainings)
	api.POST("/trainings", s.authorize(authorization.ObjectTraining, authorization.ActionCreate), s.CreateTraining)
	api.GET("/trainings/:id", s.authorize(authorization.ObjectTraining, authorization.ActionView), s.GetTraining)
	api.PUT("/trainings/:id", s.authorize(authorization.ObjectTraining, authorization.ActionUpdate), s.UpdateTraining)
	api.DELETE("/trainings/:id", s.authorize(authorization.ObjectTraining, authorization.ActionDelete), s.DeleteTraining)
	api.POST("/trainings/:id/participants", s.authorize(authorization.ObjectTraining, authorization.ActionUpdate), s.AddTrainingParticipant)
	api.PUT("/trainings/:id/participants/:participantId", s.authorize(authorization.ObjectTraining, authorization.ActionUpdate), s.UpdateTrainingParticipant)
	api.DELETE("/trainings/:id/participants/:participantId", s.authorize(authorization.ObjectTraining, authorization.ActionUpdate), s.RemoveTrainingParticipant)

	// -------- Documents --------
	api.GET("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionView), s.ListDocuments)
	api.GET("/documents/review-due", s.authorize(authorization.ObjectDocument, authorization.ActionView), s.ListDocumentsDueForReview)
	api.POST("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionCreate), s.CreateDocument)
	api.GET("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionView), s.GetDocument)
	api.PUT("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionUpdate), s.UpdateDocument)
	api.DELETE("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionDelete), s.DeleteDocument)

	// -------- HACCP plan --------
	api.GET("/ccps", s.authorize(authorization.ObjectCCP, authorization.ActionView), s.ListCCPs)
	api.POST("/ccps", s.authorize(authorization.ObjectCCP, authorization.ActionCreate), s.CreateCCP)
	api.GET("/ccps/:id", s.authorize(authorization.ObjectCCP, authorization.ActionView), s.GetCCP)
	api.PUT("/ccps/:id", s.authorize(authorization.ObjectCCP, authorization.ActionUpdate), s.UpdateCCP)
	api.DELETE("/ccps/:id", s.authorize(authorization.ObjectCCP, authorization.ActionDelete), s.DeleteCCP)
	api.GET("/hazards", s.authorize(authorization.ObjectHazard, authorization.ActionView), s.ListHazards)
	api.POST("/hazards", s.authorize(authorization.ObjectHazard, authorization.ActionCreate), s.CreateHazard)
	api.PUT("/hazards/:id", s.authorize(authorization.ObjectHazard, authorization.ActionUpdate), s.UpdateHazard)
	api.DELETE("/hazards/:id", s.authorize(authorization.ObjectHazard, authorization.ActionDelete), s.DeleteHazard)

	// -------- Lab tests --------
	api.GET("/lab-test-types", s.authorize(authorization.ObjectLabTestType, authorization.ActionView), s.ListLabTestTypes)
	api.POST("/lab-test-types", s.authorize(authorization.ObjectLabTestType, authorization.ActionCreate), s.CreateLabTestType)
	api.GET("/lab-test-types/:id", s.authorize(authorization.ObjectLabTestType, authorization.ActionView), s.GetLabTestType)
	api.PUT("/lab-test-types/:id", s.authorize(authorization.ObjectLabTestType, authorization.ActionUpdate), s.UpdateLabTestType)
	api.DELETE("/lab-test-types/:id", s.authorize(authorization.ObjectLabTestType, authorization.ActionDelete), s.DeleteLabTestType)
	api.GET("/lab-tests", s.authorize(authorization.ObjectLabTest, authorization.ActionView), s.ListLabTests)
	api.POST("/lab-tests", s.authorize(authorization.ObjectLabTest, authorization.ActionCreate), s.CreateLabTest)
	api.GET("/lab-tests/:id", s.authorize(authorization.ObjectLabTest, authorization.ActionView), s.GetLabTest)
	api.PUT("/lab-tests/:id", s.authorize(authorization.ObjectLabTest, authorization.ActionUpdate), s.UpdateLabTest)
	api.DELETE("/lab-tests/:id", s.authorize(authorization.ObjectLabTest, authorization.ActionDelete), s.DeleteLabTest)

	// -------- Waste --------
	api.GET("/waste-types", s.authorize(authorization.ObjectWasteType, authorization.ActionView), s.ListWasteTypes)
	api.POST("/waste-types", s.authorize(authorization.ObjectWasteType, authorization.ActionCreate), s.CreateWasteType)
	api.PUT("/waste-types/:id", s.authorize(authorization.ObjectWasteType, authorization.ActionUpdate), s.UpdateWasteType)
	api.DELETE("/waste-types/:id", s.authorize(authorization.ObjectWasteType, authorization.ActionDelete), s.DeleteWasteType)
	api.GET("/waste-collectors", s.authorize(authorization.ObjectWasteCollector, authorization.ActionView), s.ListWasteCollectors)
	api.POST("/waste-collectors", s.authorize(authorization.ObjectWasteCollector, authorization.ActionCreate), s.CreateWasteCollector)
	api.PUT("/waste-collectors/:id", s.authorize(authorization.ObjectWasteCollector, authorization.ActionUpdate), s.UpdateWasteCollector)
	api.DELETE("/waste-collectors/:id", s.authorize(authorization.ObjectWasteCollector, authorization.ActionDelete), s.DeleteWasteCollector)
	api.GET("/waste-records", s.authorize(authorization.ObjectWasteRecord, authorization.ActionView), s.ListWasteRecords)
	api.GET("/waste-records/totals", s.authorize(authorization.ObjectWasteRecord, authorization.ActionView), s.WasteTotals)
	api.POST("/waste-records", s.authorize(authorization.ObjectWasteRecord, authorization.ActionCreate), s.CreateWasteRecord)
	api.PUT("/waste-records/:id", s.authorize(authorization.ObjectWasteRecord, authorization.ActionUpdate), s.UpdateWasteRecord)
	api.DELETE("/waste-records/:id", s.authorize(authorization.ObjectWasteRecord, authorization.ActionDelete), s.DeleteWasteRecord)

	// -------- Corrective actions --------
	api.GET("/corrective-actions", s.authorize(authorization.ObjectCorrectiveAction, authorization.ActionView), s.ListCorrectiveActions)
	api.POST("/corrective-actions", s.authorize(authorization.ObjectCorrectiveAction, authorization.ActionCreate), s.CreateCorrectiveAction)
	api.GET("/corrective-actions/:id", s.authorize(authorization.ObjectCorrectiveAction, authorization.ActionView), s.GetCorrectiveAction)
	api.PUT("/corrective-actions/:id", s.authorize(authorization.ObjectCorrectiveAction, authorization.ActionUpdate), s.UpdateCorrectiveAction)
	api.DELETE("/corrective-actions/:id", s.authorize(authorization.ObjectCorrectiveAction, authorization.ActionDelete), s.DeleteCorrectiveAction)

	// -------- Reports --------
	reports := api.Group("/reports", s.authorize(authorization.ObjectReport, authorization.ActionView))
	{
		reports.GET("/audit-records/:id/pdf", s.AuditReportPDF)
		reports.GET("/production-batches/:id/label", s.BatchLabelPDF)
		reports.GET("/temperature-log", s.TemperatureLog)
		reports.GET("/corrective-actions/xlsx", s.CorrectiveActionsXLSX)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AuthRequired())

	admin.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	admin.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	admin.PUT("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)
	admin.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionDelete), s.DeleteUser)

	admin.GET("/activity-logs", s.authorize(authorization.ObjectActivityLog, authorization.ActionView), s.ListActivityLogs)
}
