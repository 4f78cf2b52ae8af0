package card

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/zcard/internal/luhn"
)

// expiry years are drawn from [now, now+maxYearOffset]
const maxYearOffset = 4

// Generator produces card batches. It holds no mutable state and is safe
// for concurrent use.
type Generator struct {
	cfg  Config
	now  func() time.Time
	intn func(n int) int
}

// New creates a generator using cfg. Start from DefaultConfig and
// Validate before calling.
func New(cfg Config) *Generator {
	return &Generator{
		cfg:  cfg,
		now:  time.Now,
		intn: randIntn,
	}
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns count cards whose numbers start with prefix and pass
// the mod-10 check.
func (g *Generator) Generate(prefix string, count int) ([]Card, error) {
	if !ValidPrefix(prefix) {
		return nil, fmt.Errorf("generate %q: %w", prefix, ErrInvalidPrefix)
	}
	if count < 1 || count > MaxCount {
		return nil, fmt.Errorf("generate %s: %w: %d not in [1, %d]", prefix, ErrInvalidCount, count, MaxCount)
	}

	cards := make([]Card, 0, count)
	for range count {
		number, err := g.number(prefix)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", prefix, err)
		}

		cards = append(cards, Card{
			Number: number,
			Month:  g.month(),
			Year:   g.year(),
			CVV:    g.cvv(),
		})
	}

	return cards, nil
}

// NewBatch generates Config.Count cards for prefix and stamps them with a
// fresh ID, creation time and elapsed generation time.
func (g *Generator) NewBatch(prefix string) (Batch, error) {
	start := g.now()

	cards, err := g.Generate(prefix, g.cfg.Count)
	if err != nil {
		return Batch{}, err
	}

	id, err := newID()
	if err != nil {
		return Batch{}, fmt.Errorf("new batch: %w", err)
	}

	return Batch{
		ID:        id,
		Prefix:    prefix,
		Cards:     cards,
		CreatedAt: start,
		Elapsed:   g.now().Sub(start),
	}, nil
}

// number draws random suffixes until the result passes the check. After
// MaxAttempts draws the last digit is overwritten with the check digit.
func (g *Generator) number(prefix string) (string, error) {
	// a full-length prefix leaves nothing to draw
	if len(prefix) == Length {
		if luhn.Valid(prefix) {
			return prefix, nil
		}
		return "", ErrGenerationExhausted
	}

	buf := make([]byte, Length)
	copy(buf, prefix)
	suffix := buf[len(prefix):]

	for attempt := 1; ; attempt++ {
		for i := range suffix {
			suffix[i] = byte('0' + g.intn(10))
		}
		if luhn.Valid(string(buf)) {
			return string(buf), nil
		}
		if attempt >= g.cfg.MaxAttempts {
			break
		}
	}

	d, err := luhn.CheckDigit(string(buf[:Length-1]))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationExhausted, err)
	}
	buf[Length-1] = d

	return string(buf), nil
}

// month returns 01-12.
func (g *Generator) month() string {
	return fmt.Sprintf("%02d", 1+g.intn(12))
}

// year returns the current year plus 0-4, formatted per Config.YearFormat.
func (g *Generator) year() string {
	y := g.now().Year() + g.intn(maxYearOffset+1)
	if g.cfg.YearFormat == YearShort {
		return fmt.Sprintf("%02d", y%100)
	}
	return fmt.Sprintf("%d", y)
}

// cvv returns 100-999.
func (g *Generator) cvv() string {
	return fmt.Sprintf("%d", 100+g.intn(900))
}

// newID returns an 8-character hex batch ID.
func newID() (string, error) {
	b, err := zcrypto.RandBytes(4)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
