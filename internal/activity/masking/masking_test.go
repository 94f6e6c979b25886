package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskMetadata(t *testing.T) {
	out := MaskMetadata(map[string]any{
		"email":        "kierownik@masarnia.local",
		"new_password": "bardzo-tajne-haslo",
		"nested":       map[string]any{"access_token": "abc", "name": "Chłodnia 1"},
		"phone":        "+48 601-234-567",
		"api_secret":   12345,
		"quantity":     12.5,
		" ":            "dropped",
	})

	assert.Equal(t, "kierownik@masarnia.local", out["email"])
	assert.Equal(t, redacted, out["new_password"])
	assert.Equal(t, map[string]any{"access_token": redacted, "name": "Chłodnia 1"}, out["nested"])
	assert.Equal(t, "********567", out["phone"])
	assert.Equal(t, redacted, out["api_secret"])
	assert.Equal(t, 12.5, out["quantity"])
	assert.NotContains(t, out, " ")
	assert.Nil(t, MaskMetadata(nil))
}

func TestMaskPhoneShortNumbers(t *testing.T) {
	assert.Equal(t, redacted, maskPhone("112"))
	assert.Equal(t, redacted, maskPhone("brak"))
}
