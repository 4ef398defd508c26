// Package cryptox hashes and verifies device PINs.
//
// Two encodings are supported and told apart by their prefix:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>   (base64, no padding)
//	$2a$10$...                                    (bcrypt)
//
// Verification always dispatches on the stored encoding, so switching the
// configured algorithm never locks out an existing record.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pingate/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names accepted by NewHasher.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Bounds for parameters read back from stored hashes.
const (
	maxArgonMemory = 1 << 20
	maxArgonTime   = 16
	maxArgonKeyLen = 128
)

const (
	minPINLength = 4
	maxPINLength = 8
)

var (
	ErrUnknownAlgorithm = errors.New("unknown pin hash algorithm")
	ErrInvalidHash      = errors.New("invalid pin hash format")
	ErrInvalidPINFormat = errors.New("pin must be 4 to 8 digits")
)

// ValidatePIN checks the enrollment rule for new PINs.
func ValidatePIN(pin []byte) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return ErrInvalidPINFormat
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return ErrInvalidPINFormat
		}
	}
	return nil
}

// DeriveKey stretches pin with salt using argon2id.
func DeriveKey(pin []byte, salt []byte) []byte {
	return argon2.IDKey(pin, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Hasher produces encoded PIN hashes and verifies candidates against them.
type Hasher struct {
	algorithm  string
	bcryptCost int
}

// NewHasher returns a Hasher that writes new hashes with algorithm.
func NewHasher(algorithm string) (*Hasher, error) {
	switch algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
		return &Hasher{algorithm: algorithm, bcryptCost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Hash encodes pin with the configured algorithm and a fresh salt.
func (h *Hasher) Hash(pin []byte) (string, error) {
	if h.algorithm == AlgorithmBcrypt {
		out, err := bcrypt.GenerateFromPassword(pin, h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	salt := common.GenerateRandByteArray(argonSaltLen)
	key := DeriveKey(pin, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether candidate matches encoded. Malformed hashes never
// match.
func (h *Hasher) Verify(candidate []byte, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		ok, err := verifyArgon2(candidate, encoded)
		return err == nil && ok
	case strings.HasPrefix(encoded, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), candidate) == nil
	default:
		return false
	}
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// valid rejects parameters argon2.IDKey would panic on or that would make a
// single check unreasonably expensive.
func (p argonParams) valid() bool {
	if p.time < 1 || p.time > maxArgonTime || p.threads < 1 {
		return false
	}
	return p.memory >= 8*uint32(p.threads) && p.memory <= maxArgonMemory
}

func verifyArgon2(candidate []byte, encoded string) (bool, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	var p argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return false, ErrInvalidHash
	}
	if !p.valid() {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > maxArgonKeyLen {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey(candidate, salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
