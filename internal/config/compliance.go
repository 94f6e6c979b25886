package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StockPolicySkip          = "skip"
	StockPolicyReject        = "reject"
	StockPolicyPartialFIFO   = "partial_fifo"
	StockPolicyAllowNegative = "allow_negative"
)

// ComplianceConfig carries the food-safety thresholds the write paths evaluate against.
type ComplianceConfig struct {
	Thermal          ThermalConfig          `mapstructure:"thermal"`
	Audit            AuditConfig            `mapstructure:"audit"`
	Curing           CuringConfig           `mapstructure:"curing"`
	CorrectiveAction CorrectiveActionConfig `mapstructure:"corrective_action"`
}

type ThermalConfig struct {
	RequiredTemperature float64            `mapstructure:"required_temperature"`
	ProductOverrides    map[string]float64 `mapstructure:"product_overrides"`
	CCPCode             string             `mapstructure:"ccp_code"`
}

// RequiredFor returns the core temperature a product must reach.
// Override keys are matched case-insensitively because viper lower-cases map keys.
func (t ThermalConfig) RequiredFor(productCode string) float64 {
	code := strings.ToLower(strings.TrimSpace(productCode))
	if code != "" {
		if value, ok := t.ProductOverrides[code]; ok {
			return value
		}
	}
	return t.RequiredTemperature
}

type AuditConfig struct {
	Threshold         float64 `mapstructure:"threshold"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`
}

type CuringConfig struct {
	SaltMaterialPattern        string  `mapstructure:"salt_material_pattern"`
	DefaultSaltPercentage      float64 `mapstructure:"default_salt_percentage"`
	DefaultInjectionPercentage float64 `mapstructure:"default_injection_percentage"`
	DryDays                    int     `mapstructure:"dry_days"`
	InjectionDays              int     `mapstructure:"injection_days"`
	InsufficientStockPolicy    string  `mapstructure:"insufficient_stock_policy"`
}

type CorrectiveActionConfig struct {
	DueDays map[string]int `mapstructure:"due_days"`
}

// DueDaysFor returns the number of days allowed to close an action of the given priority.
func (c CorrectiveActionConfig) DueDaysFor(priority string) int {
	if days, ok := c.DueDays[strings.ToLower(strings.TrimSpace(priority))]; ok {
		return days
	}
	return 0
}

func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		Thermal: ThermalConfig{
			RequiredTemperature: 72,
			ProductOverrides:    map[string]float64{},
			CCPCode:             "CCP-1",
		},
		Audit: AuditConfig{
			Threshold:         80,
			CriticalThreshold: 50,
		},
		Curing: CuringConfig{
			SaltMaterialPattern:        "sól peklow",
			DefaultSaltPercentage:      2.5,
			DefaultInjectionPercentage: 10,
			DryDays:                    14,
			InjectionDays:              3,
			InsufficientStockPolicy:    StockPolicySkip,
		},
		CorrectiveAction: CorrectiveActionConfig{
			DueDays: map[string]int{
				"critical": 1,
				"high":     3,
				"medium":   7,
				"low":      14,
			},
		},
	}
}

type ComplianceConfigHolder struct {
	current atomic.Value // holds ComplianceConfig
}

// NewStaticComplianceHolder returns a holder that never reloads.
func NewStaticComplianceHolder(cfg ComplianceConfig) *ComplianceConfigHolder {
	holder := &ComplianceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewComplianceConfigHolder(cfg Config, log *zap.Logger) (*ComplianceConfigHolder, error) {
	log = log.Named("compliance.config")
	v := viper.New()

	if cfg.CompliancePath != "" {
		v.SetConfigFile(cfg.CompliancePath)
	} else {
		v.SetConfigName("compliance")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/haccp")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HACCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setComplianceDefaults(v, DefaultComplianceConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Info("compliance config file not found, using defaults")
	}

	current, err := unmarshalCompliance(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticComplianceHolder(current)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := unmarshalCompliance(v)
		if err != nil {
			log.Warn("compliance config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("compliance config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *ComplianceConfigHolder) Get() ComplianceConfig {
	return h.current.Load().(ComplianceConfig)
}

func setComplianceDefaults(v *viper.Viper, defaults ComplianceConfig) {
	v.SetDefault("compliance.thermal.required_temperature", defaults.Thermal.RequiredTemperature)
	v.SetDefault("compliance.thermal.product_overrides", defaults.Thermal.ProductOverrides)
	v.SetDefault("compliance.thermal.ccp_code", defaults.Thermal.CCPCode)
	v.SetDefault("compliance.audit.threshold", defaults.Audit.Threshold)
	v.SetDefault("compliance.audit.critical_threshold", defaults.Audit.CriticalThreshold)
	v.SetDefault("compliance.curing.salt_material_pattern", defaults.Curing.SaltMaterialPattern)
	v.SetDefault("compliance.curing.default_salt_percentage", defaults.Curing.DefaultSaltPercentage)
	v.SetDefault("compliance.curing.default_injection_percentage", defaults.Curing.DefaultInjectionPercentage)
	v.SetDefault("compliance.curing.dry_days", defaults.Curing.DryDays)
	v.SetDefault("compliance.curing.injection_days", defaults.Curing.InjectionDays)
	v.SetDefault("compliance.curing.insufficient_stock_policy", defaults.Curing.InsufficientStockPolicy)
	v.SetDefault("compliance.corrective_action.due_days", defaults.CorrectiveAction.DueDays)
}

func unmarshalCompliance(v *viper.Viper) (ComplianceConfig, error) {
	// Unmarshal walks every leaf key, so defaults fill the gaps of a partial file.
	var wrapper struct {
		Compliance ComplianceConfig `mapstructure:"compliance"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return ComplianceConfig{}, err
	}
	cfg := wrapper.Compliance
	if cfg.Thermal.ProductOverrides == nil {
		cfg.Thermal.ProductOverrides = map[string]float64{}
	}
	if err := ValidateComplianceConfig(cfg); err != nil {
		return ComplianceConfig{}, err
	}
	return cfg, nil
}

func ValidateComplianceConfig(cfg ComplianceConfig) error {
	if cfg.Thermal.RequiredTemperature <= 0 {
		return errors.New("compliance.thermal.required_temperature must be positive")
	}
	for code, value := range cfg.Thermal.ProductOverrides {
		if value <= 0 {
			return fmt.Errorf("compliance.thermal.product_overrides.%s must be positive", code)
		}
	}
	if strings.TrimSpace(cfg.Thermal.CCPCode) == "" {
		return errors.New("compliance.thermal.ccp_code cannot be empty")
	}
	if cfg.Audit.Threshold <= 0 || cfg.Audit.Threshold > 100 {
		return errors.New("compliance.audit.threshold must be within (0, 100]")
	}
	if cfg.Audit.CriticalThreshold < 0 || cfg.Audit.CriticalThreshold > cfg.Audit.Threshold {
		return errors.New("compliance.audit.critical_threshold must be within [0, threshold]")
	}
	if strings.TrimSpace(cfg.Curing.SaltMaterialPattern) == "" {
		return errors.New("compliance.curing.salt_material_pattern cannot be empty")
	}
	if cfg.Curing.DefaultSaltPercentage <= 0 || cfg.Curing.DefaultInjectionPercentage <= 0 {
		return errors.New("compliance.curing percentages must be positive")
	}
	if cfg.Curing.DryDays <= 0 || cfg.Curing.InjectionDays <= 0 {
		return errors.New("compliance.curing durations must be positive")
	}
	switch cfg.Curing.InsufficientStockPolicy {
	case StockPolicySkip, StockPolicyReject, StockPolicyPartialFIFO, StockPolicyAllowNegative:
	default:
		return fmt.Errorf("unsupported compliance.curing.insufficient_stock_policy %q", cfg.Curing.InsufficientStockPolicy)
	}
	return nil
}
