package intake

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	apperrors "loan-intake/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^\d{6}$`)

func TestIDGenerator_FormatAndRange(t *testing.T) {
	gen := NewIDGenerator(func(ctx context.Context, id string) (bool, error) {
		return false, nil
	})

	for i := 0; i < 1000; i++ {
		id, err := gen.Next(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, idPattern, id)

		n, err := strconv.Atoi(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIDGenerator_RetriesOnCollision(t *testing.T) {
	tests := []struct {
		name       string
		collisions int
		wantErr    bool
	}{
		{name: "no collision", collisions: 0},
		{name: "three collisions", collisions: 3},
		{name: "nine collisions", collisions: 9},
		{name: "exhausted", collisions: 10, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			gen := NewIDGenerator(func(ctx context.Context, id string) (bool, error) {
				calls++
				return calls <= tc.collisions, nil
			})

			id, err := gen.Next(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrIDExhausted)
				return
			}

			require.NoError(t, err)
			assert.Regexp(t, idPattern, id)
			// One check per candidate: K collisions means exactly K retries.
			assert.Equal(t, tc.collisions+1, calls)
		})
	}
}

func TestIDGenerator_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	gen := NewIDGenerator(func(ctx context.Context, id string) (bool, error) {
		return false, storeErr
	})

	_, err := gen.Next(context.Background())
	assert.ErrorIs(t, err, storeErr)
}
