package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 600000
	// iteration count assumed for "pbkdf2:sha256" hashes that do not spell it out
	legacyIterations = 260000
	saltLength       = 16
	saltChars        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Hasher produces salted PBKDF2 hashes in the "pbkdf2:<alg>:<iter>$<salt>$<hex>" layout.
type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	return &Hasher{iterations: iterations}
}

func (h *Hasher) Hash(plain string) (string, error) {
	salt, err := randomSalt(saltLength)

	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(plain), []byte(salt), h.iterations, sha256.Size, sha256.New)

	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.iterations, salt, hex.EncodeToString(digest)), nil
}

// Check never fails loudly: a malformed or unsupported hash is just a mismatch.
func (h *Hasher) Check(stored, plain string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	}

	method, salt, digestHex, ok := splitHash(stored)
	if !ok {
		return false
	}

	newHash, iterations, ok := parseMethod(method)
	if !ok {
		return false
	}

	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(plain), []byte(salt), iterations, len(want), newHash)

	return hmac.Equal(got, want)
}

func splitHash(stored string) (method, salt, digest string, ok bool) {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return "", "", "", false
	}

	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}

	return parts[0], parts[1], parts[2], true
}

func parseMethod(method string) (func() hash.Hash, int, bool) {
	parts := strings.Split(method, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "pbkdf2" {
		return nil, 0, false
	}

	var newHash func() hash.Hash

	switch parts[1] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return nil, 0, false
	}

	iterations := legacyIterations

	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return nil, 0, false
		}
		iterations = n
	}

	return newHash, iterations, true
}

func randomSalt(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)

	// rejection sampling keeps every salt character equally likely
	limit := byte(256 - 256%len(saltChars))

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, saltChars[int(b)%len(saltChars)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
