package shortcode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	taken      map[string]bool
	takenFirst int // report "taken" for this many calls, then free
	calls      int
	err        error
}

func (m *mockChecker) CodeExists(ctx context.Context, code string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	if m.takenFirst > 0 && m.calls <= m.takenFirst {
		return true, nil
	}
	return m.taken[code], nil
}

func TestGenerateRandomShape(t *testing.T) {
	g := NewGenerator(&mockChecker{})

	for i := 0; i < 50; i++ {
		code, err := g.Generate(context.Background(), "")
		require.NoError(t, err)

		assert.Len(t, code, RandomLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected character %q", ch)
		}
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	checker := &mockChecker{takenFirst: 3}
	g := NewGenerator(checker)

	code, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, code, RandomLength)
	assert.Equal(t, 4, checker.calls)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	checker := &mockChecker{takenFirst: maxRetries}
	g := NewGenerator(checker)

	_, err := g.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.KindOf(err))
}

func TestGenerateCheckerFailure(t *testing.T) {
	g := NewGenerator(&mockChecker{err: errors.New("db down")})

	_, err := g.Generate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.KindOf(err))
}

func TestCustomCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		taken    bool
		wantKind errs.Kind
	}{
		{"valid", "promo-2025", false, errs.Unknown},
		{"valid underscore", "my_link", false, errs.Unknown},
		{"minimum length", "abc", false, errs.Unknown},
		{"too short", "ab", false, errs.Validation},
		{"too long", strings.Repeat("x", MaxCustomLength+1), false, errs.Validation},
		{"bad characters", "has space", false, errs.Validation},
		{"bad symbol", "promo!", false, errs.Validation},
		{"reserved", "admin", false, errs.Validation},
		{"reserved mixed case", "Trending", false, errs.Validation},
		{"taken", "promo", true, errs.Conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &mockChecker{taken: map[string]bool{tt.code: tt.taken}}
			g := NewGenerator(checker)

			code, err := g.Generate(context.Background(), tt.code)
			if tt.wantKind == errs.Unknown {
				require.NoError(t, err)
				assert.Equal(t, tt.code, code)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
		})
	}
}
