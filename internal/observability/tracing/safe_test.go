package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/auth/login"),
		attribute.String("password", "secret"),
		attribute.String("Email", "a@b.pl"),
	)
	require.Len(t, attrs, 1)
	require.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("insert failed\nargs: [secret]"))
	require.EqualError(t, err, "insert failed")
	require.Nil(t, SafeError(nil))
}
