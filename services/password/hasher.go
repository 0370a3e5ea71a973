// Package password provides the salted one-way hashing used for stored
// credentials. Callers depend on the Hasher capability only.
package password

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/postline/config"
)

var (
	ErrEmptyPassword = errors.New("password must not be empty")
	ErrInvalidHash   = errors.New("invalid password hash")
)

type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches digest. A mismatch is (false, nil);
	// an unparseable digest is (false, ErrInvalidHash).
	Verify(digest, password string) (bool, error)
}

func NewHasher(cfg config.AuthConfig) (Hasher, error) {
	switch cfg.Hasher {
	case "argon2id", "":
		return NewArgon2id(Argon2idParams{
			MemoryKiB:   cfg.Argon2MemoryKiB,
			Iterations:  cfg.Argon2Iterations,
			Parallelism: cfg.Argon2Parallelism,
			SaltLength:  16,
			KeyLength:   32,
		}), nil
	case "bcrypt":
		return NewBcrypt(cfg.BcryptCost), nil
	default:
		return nil, fmt.Errorf("unsupported password hasher: %s", cfg.Hasher)
	}
}
