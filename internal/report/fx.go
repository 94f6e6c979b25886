package report

import (
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/report/pdf"
	"github.com/smallbiznis/haccp/internal/report/repository"
	"github.com/smallbiznis/haccp/internal/report/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("report.service",
	fx.Provide(newRenderer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func newRenderer(cfg config.Config, log *zap.Logger) (*pdf.Renderer, error) {
	renderer, err := pdf.NewRenderer(pdf.Fonts{
		Regular: cfg.Report.FontRegular,
		Bold:    cfg.Report.FontBold,
	})
	if err != nil {
		return nil, err
	}
	if !renderer.Unicode() {
		log.Warn("REPORT_FONT_REGULAR not set, PDF reports print Polish letters without diacritics")
	}
	return renderer, nil
}
