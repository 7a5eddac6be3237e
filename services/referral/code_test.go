package referral_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/collegebuddy/api/services/referral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Alice", "alice"},
		{"strips whitespace", "  Ravi  Kumar\t", "ravikumar"},
		{"empty falls back", "   ", "user"},
		{"caps length", strings.Repeat("a", 40), strings.Repeat("a", 20)},
		{"keeps unicode letters", "Zoë", "zoë"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, referral.Prefix(tt.in))
		})
	}
}

func TestGenerate_Format(t *testing.T) {
	g := referral.NewCodeGenerator()
	pattern := regexp.MustCompile(`^alice[1-9][0-9]{3}$`)

	for i := 0; i < 200; i++ {
		code, err := g.Generate("Alice")
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestAllocate_TenThousandUnique(t *testing.T) {
	g := referral.NewCodeGenerator()
	ctx := context.Background()
	taken := make(map[string]struct{}, 10000)
	exists := func(_ context.Context, code string) (bool, error) {
		_, ok := taken[code]
		return ok, nil
	}

	for i := 0; i < 10000; i++ {
		code, err := g.Allocate(ctx, "Alice", exists)
		require.NoError(t, err)
		require.NotContains(t, taken, code)
		taken[code] = struct{}{}
	}
	assert.Len(t, taken, 10000)
}

func TestAllocate_WidensAfterCollisions(t *testing.T) {
	g := referral.NewCodeGenerator()
	// every 4-digit code is taken
	exists := func(_ context.Context, code string) (bool, error) {
		return len(code) == len("bob")+4, nil
	}

	code, err := g.Allocate(context.Background(), "bob", exists)
	require.NoError(t, err)
	assert.Len(t, code, len("bob")+5)
}

func TestAllocate_PropagatesLookupErrors(t *testing.T) {
	g := referral.NewCodeGenerator()
	boom := errors.New("db down")
	_, err := g.Allocate(context.Background(), "bob", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestAllocate_Exhausted(t *testing.T) {
	g := referral.NewCodeGenerator()
	_, err := g.Allocate(context.Background(), "bob", func(context.Context, string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, referral.ErrCodeSpaceExhausted)
}
