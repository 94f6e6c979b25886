package compliance

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTemperatureBoundsAreInclusive(t *testing.T) {
	cases := []struct {
		name      string
		value     float64
		compliant bool
	}{
		{name: "below", value: -0.1, compliant: false},
		{name: "at_min", value: 0, compliant: true},
		{name: "inside", value: 2.5, compliant: true},
		{name: "at_max", value: 4, compliant: true},
		{name: "above", value: 4.1, compliant: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := EvaluateTemperature("Chłodnia 1", tc.value, 0, 4)
			assert.Equal(t, tc.compliant, out.Compliant)
		})
	}
}

func TestEvaluateTemperatureDescribesViolation(t *testing.T) {
	out := EvaluateTemperature("Chłodnia mięsa", 5, 0, 4)

	require.False(t, out.Compliant)
	assert.Equal(t, cadomain.PriorityHigh, out.Priority)
	assert.Equal(t, SourceTemperatureReading, out.Source)
	assert.Contains(t, out.Description, "Chłodnia mięsa")
	assert.Contains(t, out.Description, "5")
	assert.Contains(t, out.Description, "0.0")
	assert.Contains(t, out.Description, "4.0")
}

func TestEvaluateReception(t *testing.T) {
	assert.True(t, EvaluateReception("Łopatka wieprzowa", "P-1", true, "").Compliant)

	out := EvaluateReception("Łopatka wieprzowa", "P-77", false, "temperatura 9°C")
	require.False(t, out.Compliant)
	assert.Equal(t, cadomain.PriorityHigh, out.Priority)
	assert.Contains(t, out.Description, "Łopatka wieprzowa")
	assert.Contains(t, out.Description, "P-77")
}

func TestScoreAudit(t *testing.T) {
	assert.Equal(t, 0, ScoreAudit(0, 0))
	assert.Equal(t, 70, ScoreAudit(7, 10))
	assert.Equal(t, 67, ScoreAudit(2, 3))
	assert.Equal(t, 33, ScoreAudit(1, 3))
	assert.Equal(t, 100, ScoreAudit(4, 4))
	assert.InDelta(t, 66.666, ScoreAuditPrecise(2, 3), 0.001)
}

func TestEvaluateAuditPriorities(t *testing.T) {
	cases := []struct {
		score     int
		compliant bool
		priority  cadomain.Priority
	}{
		{score: 80, compliant: true},
		{score: 79, priority: cadomain.PriorityHigh},
		{score: 70, priority: cadomain.PriorityHigh},
		{score: 50, priority: cadomain.PriorityHigh},
		{score: 49, priority: cadomain.PriorityCritical},
		{score: 0, priority: cadomain.PriorityCritical},
	}
	for _, tc := range cases {
		out := EvaluateAudit("Higiena zakładu", tc.score, 80, 50)
		assert.Equal(t, tc.compliant, out.Compliant, "score %d", tc.score)
		assert.Equal(t, tc.priority, out.Priority, "score %d", tc.score)
	}
}

func TestEvaluatePestCheck(t *testing.T) {
	for _, status := range []string{"OK", "DAMAGED", "MISSING"} {
		assert.True(t, EvaluatePestCheck("S-01", status, "").Compliant, status)
	}

	activity := EvaluatePestCheck("S-01", "ACTIVITY_DETECTED", "ślady gryzoni")
	require.False(t, activity.Compliant)
	assert.Equal(t, cadomain.PriorityHigh, activity.Priority)

	service := EvaluatePestCheck("S-02", "REQUIRES_SERVICE", "")
	require.False(t, service.Compliant)
	assert.Equal(t, cadomain.PriorityCritical, service.Priority)
}

func TestEvaluateThermalBoundaryIsInclusive(t *testing.T) {
	ccpID := snowflake.ID(11)

	assert.True(t, EvaluateThermal("20240312-001", 72, 72, &ccpID).Compliant)

	out := EvaluateThermal("20240312-001", 71.9, 72, &ccpID)
	require.False(t, out.Compliant)
	assert.Equal(t, cadomain.PriorityHigh, out.Priority)
	assert.Equal(t, CauseInsufficientThermalTreatment, out.Cause)
	require.NotNil(t, out.CCPID)
	assert.Equal(t, ccpID, *out.CCPID)
}
