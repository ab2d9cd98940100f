package store

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrPasswordMismatch covers both a wrong password and an unusable
// stored hash; login treats them identically.
var ErrPasswordMismatch = errors.New("store: password mismatch")

// Stored hashes use the PHC string format for argon2id:
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<b64 salt>$<b64 hash>

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

var defaultArgon2Params = argon2Params{memory: 64 * 1024, time: 3, threads: 2}

// VerifyPassword checks password against an argon2id PHC hash string in
// constant time over the derived keys.
func VerifyPassword(password, encodedHash string) error {
	params, salt, hash, err := decodePHC(encodedHash)
	if err != nil {
		return ErrPasswordMismatch
	}
	derived := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	if subtle.ConstantTimeCompare(derived, hash) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// HashPassword produces an argon2id PHC string with a random salt.
// Account provisioning lives outside this service, but agents and tests
// need a way to mint compatible hashes.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("store: salt: %w", err)
	}
	p := defaultArgon2Params
	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func decodePHC(encoded string) (argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, errors.New("store: unsupported hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argon2Params{}, nil, nil, errors.New("store: unsupported argon2 version")
	}

	var p argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return argon2Params{}, nil, nil, errors.New("store: malformed argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Params{}, nil, nil, errors.New("store: malformed salt")
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Params{}, nil, nil, errors.New("store: malformed hash")
	}
	return p, salt, hash, nil
}
