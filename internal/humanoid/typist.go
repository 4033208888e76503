// internal/humanoid/typist.go
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/xkilldash9x/surveyor/internal/driver"
)

// Typist enters text one rune at a time with a uniform random delay after
// each keystroke.
type Typist struct {
	pacer    *Pacer
	rng      *rand.Rand
	min, max time.Duration
}

// NewTypist returns a Typist drawing delays from [min, max].
func NewTypist(pacer *Pacer, rng *rand.Rand, min, max time.Duration) *Typist {
	if max < min {
		max = min
	}
	return &Typist{pacer: pacer, rng: rng, min: min, max: max}
}

// Delay draws the pause that follows one keystroke.
func (t *Typist) Delay() time.Duration {
	if t.max <= t.min {
		return t.min
	}
	return t.min + time.Duration(t.rng.Int63n(int64(t.max-t.min)+1))
}

// Type sends text to el rune by rune.
func (t *Typist) Type(ctx context.Context, drv driver.Driver, el driver.Element, text string) error {
	for i, r := range []rune(text) {
		if err := drv.SendKeys(ctx, el, string(r)); err != nil {
			return fmt.Errorf("typing stopped at rune %d: %w", i, err)
		}
		if err := t.pacer.Pause(ctx, t.Delay()); err != nil {
			return err
		}
	}
	return nil
}
