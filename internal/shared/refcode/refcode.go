package refcode

import (
	"math/rand"
	"regexp"
	"sync"
	"time"

	"carebridge/internal/shared/errors"
)

const (
	// Length of a reference code
	Length = 6

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxAttempts bounds regeneration when checking for collisions
	maxAttempts = 100
)

var (
	codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Generate produces a 6-character uppercase alphanumeric reference code.
// Uniqueness is not guaranteed; callers that insert into a store should use
// GenerateUnique instead.
func Generate() string {
	mu.Lock()
	defer mu.Unlock()

	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(buf)
}

// GenerateUnique produces a code for which exists returns false, regenerating
// on collision up to a bounded number of attempts.
func GenerateUnique(exists func(code string) bool) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := Generate()
		if !exists(code) {
			return code, nil
		}
	}
	return "", errors.ErrCodeExhausted
}

// IsValid reports whether s is a well-formed reference code.
func IsValid(s string) bool {
	return codePattern.MatchString(s)
}
