package password

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("kiełbasa-2024")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$m=65536,t=1,p=4$")

	assert.True(t, Verify("kiełbasa-2024", encoded))
	assert.False(t, Verify("kielbasa-2024", encoded))
	assert.False(t, Verify("kiełbasa-2024", "$bcrypt$whatever"))
	assert.False(t, Verify("kiełbasa-2024", ""))

	again, err := Hash("kiełbasa-2024")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again)
	assert.False(t, NeedsRehash(encoded))
}

func TestValidateCountsRunes(t *testing.T) {
	assert.ErrorIs(t, Validate("krótkie"), ErrTooShort)
	assert.NoError(t, Validate("żółćżółć"))
	assert.NoError(t, Validate("szynka-wędzona"))
}

func TestNeedsRehashForOlderParameters(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("stare-haslo"), salt, 3, 32*1024, 2, 32)
	legacy := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", 32*1024, 3, 2,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	assert.True(t, Verify("stare-haslo", legacy))
	assert.True(t, NeedsRehash(legacy))
	assert.True(t, NeedsRehash("garbage"))
}

func TestDecodeRejectsMalformedHashes(t *testing.T) {
	cases := map[string]error{
		"plain":                            ErrMalformedHash,
		"$argon2i$v=19$m=1,t=1,p=1$a$b":    ErrUnsupportedHash,
		"$argon2id$v=16$m=1,t=1,p=1$a$b":   ErrUnsupportedHash,
		"$argon2id$v=19$m=0,t=1,p=1$YQ$Yg": ErrMalformedHash,
		"$argon2id$v=19$m=1,t=1,p=1$!!$Yg": ErrMalformedHash,
	}
	for encoded, want := range cases {
		_, err := decode(encoded)
		assert.ErrorIs(t, err, want, encoded)
	}
}
