// Package shortcode produces unique short codes, random or caller-supplied.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aman-churiwal/shortlink/internal/errs"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	RandomLength    = 6
	MinCustomLength = 3
	MaxCustomLength = 20

	maxRetries = 5
)

var customPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Route segments and other names a custom code may not shadow.
var reservedCodes = map[string]bool{
	"api":      true,
	"admin":    true,
	"auth":     true,
	"health":   true,
	"stats":    true,
	"links":    true,
	"trending": true,
}

// CodeChecker reports whether a code is already taken. Deleted links keep
// their codes reserved, so the check covers them too.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

type Generator struct {
	checker CodeChecker
}

func NewGenerator(checker CodeChecker) *Generator {
	return &Generator{checker: checker}
}

// Generate returns a unique code. With a custom code it validates format and
// availability; otherwise it draws random codes until one is free, up to a
// bounded retry count.
func (g *Generator) Generate(ctx context.Context, custom string) (string, error) {
	if custom != "" {
		return g.validateCustom(ctx, custom)
	}
	return g.random(ctx)
}

func (g *Generator) random(ctx context.Context) (string, error) {
	const op = "shortcode.random"

	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := randomCode(RandomLength)
		if err != nil {
			return "", errs.E(op, errs.Internal, err)
		}

		taken, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", errs.E(op, errs.Internal, err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", errs.Ef(op, errs.Internal, "could not find a free code after %d attempts", maxRetries)
}

func (g *Generator) validateCustom(ctx context.Context, code string) (string, error) {
	const op = "shortcode.custom"

	if len(code) < MinCustomLength || len(code) > MaxCustomLength {
		return "", errs.Ef(op, errs.Validation,
			"custom code must be %d-%d characters", MinCustomLength, MaxCustomLength)
	}
	if !customPattern.MatchString(code) {
		return "", errs.E(op, errs.Validation,
			errors.New("custom code may only contain letters, digits, hyphen and underscore"))
	}
	if reservedCodes[strings.ToLower(code)] {
		return "", errs.Ef(op, errs.Validation, "%q is a reserved code", code)
	}

	taken, err := g.checker.CodeExists(ctx, code)
	if err != nil {
		return "", errs.E(op, errs.Internal, err)
	}
	if taken {
		return "", errs.Ef(op, errs.Conflict, "code %q is already in use", code)
	}

	return code, nil
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf), nil
}
