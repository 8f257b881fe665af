package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NumberGenerator issues human-facing order numbers.
type NumberGenerator func(now time.Time) string

// DefaultOrderNumber is "ORD" + unix millis + three random digits.
func DefaultOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%d%03d", now.UnixMilli(), rand.IntN(1000))
}
