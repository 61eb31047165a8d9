// Package intake implements the submission pipeline: identifier assignment,
// payload validation, persistence, artifact rendering, and notification.
package intake

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/metrics"
)

// maxIDAttempts bounds collision retries. Exhausting it means the 900000-slot
// space is nearly full or the store is misbehaving; callers treat it as a
// retryable infrastructure failure.
const maxIDAttempts = 10

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// IDGenerator produces unique 6-digit application identifiers.
type IDGenerator struct {
	exists ExistsFunc
}

func NewIDGenerator(exists ExistsFunc) *IDGenerator {
	return &IDGenerator{exists: exists}
}

// randomCandidate derives a 6-digit decimal string from 6 hex characters of
// crypto/rand output: 100000 + (value mod 900000). The mapping carries a
// slight modulo bias; at this range ratio it is an accepted approximation.
func randomCandidate() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	value, err := strconv.ParseInt(hex.EncodeToString(buf), 16, 64)
	if err != nil {
		return "", fmt.Errorf("parse hex candidate: %w", err)
	}

	return strconv.FormatInt(100000+value%900000, 10), nil
}

// Next returns an identifier not currently present in the application set,
// retrying on collision up to maxIDAttempts before reporting exhaustion.
func (g *IDGenerator) Next(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			metrics.IDGenerationRetries.Inc()
		}

		candidate, err := randomCandidate()
		if err != nil {
			return "", err
		}

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %d attempts", apperrors.ErrIDExhausted, maxIDAttempts)
}
