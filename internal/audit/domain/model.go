package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AuditChecklist struct {
	ID        snowflake.ID                `json:"id" gorm:"primaryKey"`
	Name      string                      `json:"name" gorm:"type:text;not null"`
	Category  *string                     `json:"category,omitempty" gorm:"type:text"`
	Items     datatypes.JSONSlice[string] `json:"items"`
	Active    bool                        `json:"active" gorm:"not null"`
	CreatedAt time.Time                   `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time                   `json:"updated_at" gorm:"not null"`
}

func (AuditChecklist) TableName() string { return "audit_checklists" }

type ItemResult struct {
	Item   string  `json:"item"`
	Passed bool    `json:"passed"`
	Notes  *string `json:"notes,omitempty"`
}

type AuditRecord struct {
	ID          snowflake.ID                    `json:"id" gorm:"primaryKey"`
	ChecklistID snowflake.ID                    `json:"checklist_id" gorm:"not null;index"`
	AuditDate   time.Time                       `json:"audit_date" gorm:"not null;index"`
	Auditor     string                          `json:"auditor" gorm:"type:text;not null"`
	Results     datatypes.JSONSlice[ItemResult] `json:"results"`
	Score       int                             `json:"score" gorm:"not null"`
	Notes       *string                         `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy   *snowflake.ID                   `json:"created_by,omitempty"`
	CreatedAt   time.Time                       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time                       `json:"updated_at" gorm:"not null"`
}

func (AuditRecord) TableName() string { return "audit_records" }

// Tally counts the passed results against the checklist. Every result must
// name a checklist item, at most once.
func (c AuditChecklist) Tally(results []ItemResult) (int, error) {
	listed := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		listed[item] = true
	}
	seen := make(map[string]bool, len(results))
	passed := 0
	for _, result := range results {
		if !listed[result.Item] || seen[result.Item] {
			return 0, ErrInvalidResults
		}
		seen[result.Item] = true
		if result.Passed {
			passed++
		}
	}
	return passed, nil
}

// PassedOn counts passed results for items still listed on the checklist.
func (r AuditRecord) PassedOn(c AuditChecklist) int {
	listed := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		listed[item] = true
	}
	passed := 0
	for _, result := range r.Results {
		if result.Passed && listed[result.Item] {
			listed[result.Item] = false
			passed++
		}
	}
	return passed
}

// Results is the submitted outcome of an audit. It decodes either a list of
// {item, passed, notes} objects or an object mapping item to a boolean.
type Results []ItemResult

func (r *Results) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []ItemResult
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}

	var byItem map[string]bool
	if err := json.Unmarshal(trimmed, &byItem); err != nil {
		return err
	}
	keys := make([]string, 0, len(byItem))
	for key := range byItem {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	list := make([]ItemResult, 0, len(keys))
	for _, key := range keys {
		list = append(list, ItemResult{Item: key, Passed: byItem[key]})
	}
	*r = list
	return nil
}
