package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// MinLength counts runes, so "żółć" is four characters long.
const MinLength = 8

var (
	ErrTooShort        = errors.New("password_too_short")
	ErrMalformedHash   = errors.New("malformed_password_hash")
	ErrUnsupportedHash = errors.New("unsupported_password_hash")
)

// Params are the Argon2id cost parameters encoded into every hash.
type Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// Current is applied to new hashes. Hashes made with other parameters still
// verify and report NeedsRehash.
var Current = Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

type decoded struct {
	params Params
	salt   []byte
	key    []byte
}

// Validate applies the plant's password policy.
func Validate(password string) error {
	if utf8.RuneCountInString(password) < MinLength {
		return ErrTooShort
	}
	return nil
}

// Hash returns password encoded in the PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func Hash(password string) (string, error) {
	salt := make([]byte, Current.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, Current.Time, Current.Memory, Current.Threads, Current.KeyLen)
	return encode(Current, salt, key), nil
}

// Verify reports whether password matches the encoded hash. Malformed or
// foreign hashes never match.
func Verify(password, encoded string) bool {
	d, err := decode(encoded)
	if err != nil {
		return false
	}
	check := argon2.IDKey([]byte(password), d.salt, d.params.Time, d.params.Memory, d.params.Threads, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(d.key, check) == 1
}

// NeedsRehash reports whether encoded was produced with parameters other
// than Current.
func NeedsRehash(encoded string) bool {
	d, err := decode(encoded)
	if err != nil {
		return true
	}
	p := d.params
	return p.Memory != Current.Memory || p.Time != Current.Time || p.Threads != Current.Threads ||
		uint32(len(d.key)) != Current.KeyLen || len(d.salt) != Current.SaltLen
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decode(encoded string) (*decoded, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return nil, ErrUnsupportedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return nil, ErrUnsupportedHash
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, ErrMalformedHash
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, ErrMalformedHash
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))
	return &decoded{params: p, salt: salt, key: key}, nil
}
