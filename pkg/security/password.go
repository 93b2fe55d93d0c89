// Package security hashes credentials with Argon2id using the standard
// $argon2id$ encoded form, so parameters can be tuned without invalidating
// existing hashes. Staff PINs go through the same code path as customer
// passwords.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

const pinCharset = "0123456789"

type argonParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	saltLen     uint32
	keyLen      uint32
}

func paramsFromConfig(cfg config.PasswordConfig) argonParams {
	return argonParams{
		memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		time:        clampUint32(cfg.ArgonTime, 1, 10),
		parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		saltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		keyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

// HashPassword returns the encoded Argon2id hash of password.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	params := paramsFromConfig(cfg)
	salt := make([]byte, params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.parallelism, params.keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		params.memory, params.time, params.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword reports whether password matches the encoded hash. The
// comparison is constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.parallelism, params.keyLen)
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	var params argonParams
	for _, token := range strings.Split(parts[3], ",") {
		keyValue := strings.SplitN(token, "=", 2)
		if len(keyValue) != 2 {
			return argonParams{}, nil, nil, ErrInvalidHash
		}
		v, err := strconv.ParseUint(keyValue[1], 10, 32)
		if err != nil {
			return argonParams{}, nil, nil, ErrInvalidHash
		}
		switch keyValue[0] {
		case "m":
			params.memory = uint32(v)
		case "t":
			params.time = uint32(v)
		case "p":
			if v > 255 {
				return argonParams{}, nil, nil, ErrInvalidHash
			}
			params.parallelism = uint8(v)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	params.saltLen = uint32(len(salt))
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}

// GenerateTempPIN produces a random numeric PIN for newly created staff
// accounts.
func GenerateTempPIN(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]byte, length)
	for i := range result {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(pinCharset))))
		if err != nil {
			return "", err
		}
		result[i] = pinCharset[idx.Int64()]
	}
	return string(result), nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clamp(value, min, max))
}
