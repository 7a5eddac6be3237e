package referral

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
)

const (
	defaultPrefix   = "user"
	maxPrefixRunes  = 20
	baseSuffixLen   = 4
	maxSuffixLen    = 9
	collisionsLimit = 8
)

// ErrCodeSpaceExhausted is returned when no free code could be found
var ErrCodeSpaceExhausted = errors.New("referral code space exhausted")

// ExistsFunc reports whether a code is already taken
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator builds referral codes of the form <name><digits>
type CodeGenerator struct {
	random io.Reader
}

// NewCodeGenerator returns a generator backed by crypto/rand
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{random: rand.Reader}
}

// Prefix lowercases the display name and drops whitespace
func Prefix(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		n++
		if n == maxPrefixRunes {
			break
		}
	}
	if b.Len() == 0 {
		return defaultPrefix
	}
	return b.String()
}

// Generate returns one candidate with a 4-digit suffix
func (g *CodeGenerator) Generate(name string) (string, error) {
	return g.candidate(Prefix(name), baseSuffixLen)
}

// Allocate draws candidates until exists reports a free one. After
// collisionsLimit collisions at a given width the suffix gains a digit.
func (g *CodeGenerator) Allocate(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	prefix := Prefix(name)
	for width := baseSuffixLen; width <= maxSuffixLen; width++ {
		for i := 0; i < collisionsLimit; i++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			code, err := g.candidate(prefix, width)
			if err != nil {
				return "", err
			}
			taken, err := exists(ctx, code)
			if err != nil {
				return "", fmt.Errorf("failed to check referral code: %w", err)
			}
			if !taken {
				return code, nil
			}
		}
	}
	return "", ErrCodeSpaceExhausted
}

// candidate appends a uniformly drawn number in [10^(width-1), 10^width)
func (g *CodeGenerator) candidate(prefix string, width int) (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(width-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)

	n, err := rand.Int(g.random, span)
	if err != nil {
		return "", fmt.Errorf("failed to draw referral suffix: %w", err)
	}
	return prefix + n.Add(n, low).String(), nil
}
