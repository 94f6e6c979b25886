package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// boolQuery reads an optional boolean query parameter, aborting with a
// validation error when it does not parse.
func boolQuery(c *gin.Context, name string) (*bool, bool) {
	value, err := parseOptionalBool(c.Query(name))
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_"+name, "invalid "+name))
		return nil, false
	}
	return value, true
}

func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// parsePeriod reads a from/to pair; a date-only "to" covers the whole day.
func parsePeriod(fromValue, toValue string) (*time.Time, *time.Time, error) {
	from, err := parseOptionalTime(fromValue, false)
	if err != nil {
		return nil, nil, newValidationError("from", "invalid_from", "invalid from")
	}
	to, err := parseOptionalTime(toValue, true)
	if err != nil {
		return nil, nil, newValidationError("to", "invalid_to", "invalid to")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, newValidationError("from", "invalid_period", "from must not be after to")
	}
	return from, to, nil
}

// periodQuery reads from/to query parameters, aborting on invalid input.
func periodQuery(c *gin.Context) (*time.Time, *time.Time, bool) {
	from, to, err := parsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, err)
		return nil, nil, false
	}
	return from, to, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		AbortWithError(c, invalidRequestError())
		return false
	}
	return true
}
