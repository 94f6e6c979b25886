package compliance

import (
	"fmt"
	"math"

	"github.com/bwmarrin/snowflake"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
)

type Source string

const (
	SourceTemperatureReading Source = "temperature_reading"
	SourceReception          Source = "reception"
	SourceAuditRecord        Source = "audit_record"
	SourcePestCheck          Source = "pest_check"
	SourceProductionBatch    Source = "production_batch"
)

// CauseInsufficientThermalTreatment is recorded on actions opened for
// production batches that did not reach their core temperature.
const CauseInsufficientThermalTreatment = "insufficient thermal treatment"

// Outcome is what a write path reports after evaluating a record. Only a
// non-compliant outcome produces a corrective action.
type Outcome struct {
	Source      Source
	SourceID    snowflake.ID
	Compliant   bool
	Priority    cadomain.Priority
	Title       string
	Description string
	Cause       string
	CCPID       *snowflake.ID
}

// EvaluateTemperature checks a reading against the inclusive limits of its point.
func EvaluateTemperature(pointName string, temperature, minTemp, maxTemp float64) Outcome {
	compliant := minTemp <= temperature && temperature <= maxTemp
	out := Outcome{Source: SourceTemperatureReading, Compliant: compliant}
	if compliant {
		return out
	}
	out.Priority = cadomain.PriorityHigh
	out.Title = fmt.Sprintf("Przekroczenie temperatury: %s", pointName)
	out.Description = fmt.Sprintf(
		"Punkt %s: zmierzono %s°C, dopuszczalny zakres %s°C – %s°C.",
		pointName, formatTemp(temperature), formatTemp(minTemp), formatTemp(maxTemp),
	)
	out.Cause = "temperature out of range"
	return out
}

// EvaluateReception propagates the receiving employee's verdict.
func EvaluateReception(materialName, batchNumber string, compliant bool, notes string) Outcome {
	out := Outcome{Source: SourceReception, Compliant: compliant}
	if compliant {
		return out
	}
	out.Priority = cadomain.PriorityHigh
	out.Title = fmt.Sprintf("Niezgodna dostawa: %s", materialName)
	out.Description = fmt.Sprintf("Przyjęcie surowca %s, partia %s oznaczone jako niezgodne.", materialName, batchNumber)
	if notes != "" {
		out.Description += " Uwagi: " + notes
	}
	out.Cause = "non-compliant reception"
	return out
}

// ScoreAudit returns round(100 * passed / total); an empty checklist scores 0.
func ScoreAudit(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(passed) / float64(total)))
}

// ScoreAuditPrecise is the unrounded score used in printed reports.
func ScoreAuditPrecise(passed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(passed) / float64(total)
}

// EvaluateAudit applies the pass threshold; scores under the critical
// threshold escalate to CRITICAL.
func EvaluateAudit(checklistName string, score int, threshold, criticalThreshold float64) Outcome {
	value := float64(score)
	compliant := value >= threshold
	out := Outcome{Source: SourceAuditRecord, Compliant: compliant}
	if compliant {
		return out
	}
	out.Priority = cadomain.PriorityHigh
	if value < criticalThreshold {
		out.Priority = cadomain.PriorityCritical
	}
	out.Title = fmt.Sprintf("Audyt poniżej progu: %s", checklistName)
	out.Description = fmt.Sprintf("Wynik audytu %s: %d%% (próg %s%%).", checklistName, score, formatTemp(threshold))
	out.Cause = "audit score below threshold"
	return out
}

// EvaluatePestCheck flags detected activity (HIGH) and points needing service (CRITICAL).
func EvaluatePestCheck(pointName, status, findings string) Outcome {
	out := Outcome{Source: SourcePestCheck, Compliant: true}
	switch status {
	case "ACTIVITY_DETECTED":
		out.Priority = cadomain.PriorityHigh
		out.Cause = "pest activity detected"
	case "REQUIRES_SERVICE":
		out.Priority = cadomain.PriorityCritical
		out.Cause = "pest control point requires service"
	default:
		return out
	}
	out.Compliant = false
	out.Title = fmt.Sprintf("Monitoring szkodników: %s", pointName)
	out.Description = fmt.Sprintf("Punkt %s: status %s.", pointName, status)
	if findings != "" {
		out.Description += " Ustalenia: " + findings
	}
	return out
}

// EvaluateThermal checks the final core temperature of a production batch.
// The required temperature is inclusive.
func EvaluateThermal(batchNumber string, finalTemperature, required float64, ccpID *snowflake.ID) Outcome {
	compliant := finalTemperature >= required
	out := Outcome{Source: SourceProductionBatch, Compliant: compliant, CCPID: ccpID}
	if compliant {
		return out
	}
	out.Priority = cadomain.PriorityHigh
	out.Title = fmt.Sprintf("Niewystarczająca obróbka termiczna: partia %s", batchNumber)
	out.Description = fmt.Sprintf(
		"Partia %s osiągnęła %s°C, wymagane minimum %s°C.",
		batchNumber, formatTemp(finalTemperature), formatTemp(required),
	)
	out.Cause = CauseInsufficientThermalTreatment
	return out
}

func formatTemp(value float64) string {
	return fmt.Sprintf("%.1f", value)
}
