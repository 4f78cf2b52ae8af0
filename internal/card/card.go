// Package card generates test payment card data. Numbers start with a
// caller-supplied prefix and pass the mod-10 check. Expiry and CVV are
// drawn independently. All generation uses crypto/rand.
package card

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Length is the number of digits in every generated card number.
const Length = 16

// prefix bounds in digits
const (
	MinPrefix = 6
	MaxPrefix = Length
)

// MaxCount caps the number of cards in a single batch.
const MaxCount = 100

// maxAttemptsLimit caps Config.MaxAttempts.
const maxAttemptsLimit = 10000

var (
	// ErrGenerationExhausted is returned when no number passing the
	// checksum can be produced for a prefix.
	ErrGenerationExhausted = errors.New("generation exhausted")

	// ErrInvalidPrefix is returned for prefixes that are not 6-16 digits.
	ErrInvalidPrefix = errors.New("prefix must be 6-16 digits")

	// ErrInvalidCount is returned for batch sizes outside [1, MaxCount].
	ErrInvalidCount = errors.New("invalid count")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// YearFormat selects how expiry years are rendered.
type YearFormat string

const (
	// YearLong renders the full year, e.g. "2027".
	YearLong YearFormat = "yyyy"
	// YearShort renders the last two digits, e.g. "27".
	YearShort YearFormat = "yy"
)

// Card is one generated record.
type Card struct {
	Number string `json:"number"`
	Month  string `json:"month"`
	Year   string `json:"year"`
	CVV    string `json:"cvv"`
}

// String renders the card as NUMBER|MONTH|YEAR|CVV.
func (c Card) String() string {
	return c.Number + "|" + c.Month + "|" + c.Year + "|" + c.CVV
}

// Batch is the output of one generation request.
type Batch struct {
	ID        string        `json:"id"`
	Prefix    string        `json:"prefix"`
	Cards     []Card        `json:"cards"`
	CreatedAt time.Time     `json:"created_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Lines returns each card rendered on its own line.
func (b Batch) Lines() []string {
	lines := make([]string, len(b.Cards))
	for i, c := range b.Cards {
		lines[i] = c.String()
	}
	return lines
}

// Text returns all cards joined by newlines.
func (b Batch) Text() string {
	return strings.Join(b.Lines(), "\n")
}

// Config controls batch generation.
type Config struct {
	// Count is the number of cards per batch.
	Count int `json:"count"`
	// YearFormat is either YearLong or YearShort.
	YearFormat YearFormat `json:"year_format"`
	// MaxAttempts is how many random draws are tried per card before the
	// final digit is replaced with the check digit.
	MaxAttempts int `json:"max_attempts"`
}

// DefaultConfig returns the configuration used when nothing is stored.
func DefaultConfig() Config {
	return Config{
		Count:       10,
		YearFormat:  YearLong,
		MaxAttempts: 100,
	}
}

// Validate checks that every field is in range.
func (c Config) Validate() error {
	if c.Count < 1 || c.Count > MaxCount {
		return fmt.Errorf("%w: count %d not in [1, %d]", ErrInvalidConfig, c.Count, MaxCount)
	}
	if c.YearFormat != YearLong && c.YearFormat != YearShort {
		return fmt.Errorf("%w: year format %q", ErrInvalidConfig, c.YearFormat)
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > maxAttemptsLimit {
		return fmt.Errorf("%w: max attempts %d not in [1, %d]", ErrInvalidConfig, c.MaxAttempts, maxAttemptsLimit)
	}
	return nil
}

// ValidPrefix reports whether s is 6-16 ASCII digits.
func ValidPrefix(s string) bool {
	if len(s) < MinPrefix || len(s) > MaxPrefix {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Digits drops every non-digit from user input, so "5575-71" and
// "557571" are the same prefix.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
