// Package diagnostics implements midorc's single-error-at-a-time diagnostic
// format: every pass aborts on its first failure and reports a Diagnostic
// carrying a source span and a stable error code.
package diagnostics

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/midori-lang/midorc/internal/token"
)

// Pass identifies which compiler stage raised a Diagnostic. Codes are assigned
// by looking up the pass and a substring of the message, mirroring the
// original implementation's per-module code tables.
type Pass int

const (
	PassLexer Pass = iota
	PassParser
	PassResolver
	PassChecker
	PassBorrow
	PassLowering
)

// Diagnostic is the sole error type the core ever returns. Pipelines abort at
// the first one; there is no multi-error batching.
type Diagnostic struct {
	Span    token.Span
	Code    string
	Message string
	Hint    string
}

// New constructs a Diagnostic, inferring its code from the pass and message.
func New(pass Pass, span token.Span, message string) *Diagnostic {
	return &Diagnostic{Span: span, Code: codeFor(pass, message), Message: message}
}

// NewWithHint is New plus a hint line.
func NewWithHint(pass Pass, span token.Span, message, hint string) *Diagnostic {
	return &Diagnostic{Span: span, Code: codeFor(pass, message), Message: message, Hint: hint}
}

// NewCoded bypasses code inference for callers that already know their code
// (used by the lexer and parser, whose messages don't cleanly substring-match).
func NewCoded(code string, span token.Span, message string) *Diagnostic {
	return &Diagnostic{Span: span, Code: code, Message: message}
}

// NewCodedWithHint is NewCoded plus a hint line.
func NewCodedWithHint(code string, span token.Span, message, hint string) *Diagnostic {
	return &Diagnostic{Span: span, Code: code, Message: message, Hint: hint}
}

func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders "{file}:{line}:{col}: error[{code}]: {message}" and an
// optional "  hint: {hint}" line. When color is true the error tag is
// wrapped in ANSI red.
func (d *Diagnostic) Format(color bool) string {
	tag := fmt.Sprintf("error[%s]", d.Code)
	if color {
		tag = "\x1b[1;31m" + tag + "\x1b[0m"
	}
	out := fmt.Sprintf("%s: %s: %s", d.Span.Format(), tag, d.Message)
	if d.Hint != "" {
		out += "\n  hint: " + d.Hint
	}
	return out
}

// ShouldColor reports whether diagnostics written to stderr should be
// colorized: honors NO_COLOR and falls back to TTY detection via isatty,
// the same signal the teacher's terminal builtins use to decide on color.
func ShouldColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func codeFor(pass Pass, message string) string {
	lower := strings.ToLower(message)
	switch pass {
	case PassLexer:
		switch {
		case strings.Contains(lower, "invalid character"):
			return "MD1001"
		case strings.Contains(lower, "unterminated string literal"):
			return "MD1002"
		case strings.Contains(lower, "unterminated char literal"):
			return "MD1003"
		case strings.Contains(lower, "invalid char literal"):
			return "MD1004"
		case strings.Contains(lower, "unterminated block comment"):
			return "MD1005"
		}
		return "MD1000"
	case PassParser:
		if strings.HasPrefix(lower, "expected ") {
			return "MD2001"
		}
		return "MD2000"
	case PassResolver:
		switch {
		case strings.Contains(lower, "duplicate function"):
			return "MD3001"
		case strings.Contains(lower, "duplicate enum variant"):
			return "MD3003"
		case strings.Contains(lower, "duplicate enum"):
			return "MD3002"
		case strings.Contains(lower, "missing entry point function"):
			return "MD3004"
		case strings.Contains(lower, "duplicate custom error"):
			return "MD3005"
		}
		return "MD3000"
	case PassChecker:
		switch {
		case strings.Contains(lower, "unknown name"):
			return "MD3101"
		case strings.Contains(lower, "type mismatch"):
			return "MD3102"
		case strings.Contains(lower, "cannot assign to immutable variable"):
			return "MD3103"
		case strings.Contains(lower, "wrong number of arguments"):
			return "MD3104"
		case strings.Contains(lower, "`?` expects result"):
			return "MD3105"
		case strings.Contains(lower, "`?` can only be used"):
			return "MD3106"
		case strings.Contains(lower, "variant pattern") && strings.Contains(lower, "requires enum target"):
			return "MD3107"
		case strings.Contains(lower, "unknown variant"):
			return "MD3108"
		case strings.Contains(lower, "ambiguous variant constructor"):
			return "MD3109"
		case strings.Contains(lower, "unsupported"):
			return "MD3110"
		case strings.Contains(lower, "unknown custom error kind"):
			return "MD3111"
		case strings.Contains(lower, "`raise`"):
			return "MD3112"
		}
		return "MD3100"
	case PassBorrow:
		switch {
		case strings.Contains(lower, "use after move"):
			return "MD4001"
		case strings.Contains(lower, "cannot mutably borrow"):
			return "MD4002"
		case strings.Contains(lower, "cannot immutably borrow"):
			return "MD4003"
		case strings.Contains(lower, "cannot borrow moved value"):
			return "MD4004"
		case strings.Contains(lower, "while mutably borrowed"):
			return "MD4005"
		}
		return "MD4000"
	case PassLowering:
		switch {
		case strings.Contains(lower, "not implemented yet"):
			return "MD5001"
		case strings.Contains(lower, "expects result"):
			return "MD5002"
		}
		return "MD5000"
	}
	return "MD0001"
}
