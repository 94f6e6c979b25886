package domain

import (
	"context"
	"errors"
)

type Service interface {
	ListCCPs(ctx context.Context, req ListCCPRequest) ([]CCP, error)
	GetCCP(ctx context.Context, id string) (*CCP, error)
	FindCCPByCode(ctx context.Context, code string) (*CCP, error)
	CreateCCP(ctx context.Context, req CCPRequest) (*CCP, error)
	UpdateCCP(ctx context.Context, id string, req CCPRequest) (*CCP, error)
	DeleteCCP(ctx context.Context, id string) error

	ListHazards(ctx context.Context, req ListHazardRequest) ([]Hazard, error)
	CreateHazard(ctx context.Context, req HazardRequest) (*Hazard, error)
	UpdateHazard(ctx context.Context, id string, req HazardRequest) (*Hazard, error)
	DeleteHazard(ctx context.Context, id string) error
}

type ListCCPRequest struct {
	Active *bool
}

type CCPRequest struct {
	Code                *string `json:"code"`
	Name                *string `json:"name"`
	ProcessStep         *string `json:"process_step"`
	Hazard              *string `json:"hazard"`
	CriticalLimit       *string `json:"critical_limit"`
	Monitoring          *string `json:"monitoring"`
	CorrectiveProcedure *string `json:"corrective_procedure"`
	Verification        *string `json:"verification"`
	Active              *bool   `json:"active"`
}

type ListHazardRequest struct {
	Type  string
	CCPID string
}

type HazardRequest struct {
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	ProcessStep     *string `json:"process_step"`
	Severity        *int    `json:"severity"`
	Likelihood      *int    `json:"likelihood"`
	ControlMeasures *string `json:"control_measures"`
	CCPID           *string `json:"ccp_id"`
}

var (
	ErrInvalidCode          = errors.New("invalid_code")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidProcessStep   = errors.New("invalid_process_step")
	ErrInvalidHazard        = errors.New("invalid_hazard")
	ErrInvalidCriticalLimit = errors.New("invalid_critical_limit")
	ErrInvalidHazardType    = errors.New("invalid_type")
	ErrInvalidSeverity      = errors.New("invalid_severity")
	ErrInvalidLikelihood    = errors.New("invalid_likelihood")
	ErrInvalidCCP           = errors.New("invalid_ccp_id")
	ErrDuplicateCode        = errors.New("duplicate_code")
	ErrNotFound             = errors.New("not_found")
	ErrInvalidID            = errors.New("invalid_id")
)
