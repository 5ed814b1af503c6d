package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedPasswordHash is returned when a stored credential cannot be decoded.
var ErrMalformedPasswordHash = errors.New("malformed password hash")

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// PasswordCost tunes the argon2id key derivation used for account passwords.
type PasswordCost struct {
	MemoryKiB uint32
	Passes    uint32
	Lanes     uint8
	SaltBytes int
	KeyBytes  uint32
}

// AccountPasswordCost is applied to every password stored by the portal.
var AccountPasswordCost = PasswordCost{
	MemoryKiB: 64 * 1024,
	Passes:    3,
	Lanes:     2,
	SaltBytes: 16,
	KeyBytes:  32,
}

// storedPassword is the decoded form of "$argon2id$v=19$m=..,t=..,p=..$salt$key".
type storedPassword struct {
	cost PasswordCost
	salt []byte
	key  []byte
}

func (p storedPassword) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.cost.MemoryKiB, p.cost.Passes, p.cost.Lanes,
		enc.EncodeToString(p.salt), enc.EncodeToString(p.key))
}

func (p storedPassword) matches(candidate string) bool {
	derived := argon2.IDKey([]byte(candidate), p.salt, p.cost.Passes, p.cost.MemoryKiB, p.cost.Lanes, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, derived) == 1
}

func decodeStoredPassword(encoded string) (storedPassword, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return storedPassword{}, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return storedPassword{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedPasswordHash, fields[2])
	}

	var p storedPassword
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.cost.MemoryKiB, &p.cost.Passes, &p.cost.Lanes); err != nil {
		return storedPassword{}, fmt.Errorf("%w: %v", ErrMalformedPasswordHash, err)
	}
	if p.cost.Passes == 0 || p.cost.Lanes == 0 {
		return storedPassword{}, ErrMalformedPasswordHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return storedPassword{}, fmt.Errorf("%w: salt: %v", ErrMalformedPasswordHash, err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(p.key) == 0 {
		return storedPassword{}, fmt.Errorf("%w: key", ErrMalformedPasswordHash)
	}
	return p, nil
}

// HashPasswordWithCost derives a fresh salted argon2id credential.
func HashPasswordWithCost(password string, cost PasswordCost) (string, error) {
	if cost.SaltBytes <= 0 || cost.KeyBytes == 0 {
		return "", fmt.Errorf("password cost needs a salt and key length")
	}
	p := storedPassword{cost: cost, salt: make([]byte, cost.SaltBytes)}
	if _, err := rand.Read(p.salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	p.key = argon2.IDKey([]byte(password), p.salt, cost.Passes, cost.MemoryKiB, cost.Lanes, cost.KeyBytes)
	return p.String(), nil
}

// HashPassword hashes an account password with AccountPasswordCost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, AccountPasswordCost)
}

// VerifyPassword returns ErrInvalidCredentials when password does not match
// the stored credential.
func VerifyPassword(hashedPassword, password string) error {
	stored, err := decodeStoredPassword(hashedPassword)
	if err != nil {
		return err
	}
	if !stored.matches(password) {
		return ErrInvalidCredentials
	}
	return nil
}
