package hashcash

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Version is the only stamp version this package produces or accepts.
	Version = 1
	// MinBits is the smallest accepted difficulty.
	MinBits = 10
	// MaxBits is the largest accepted difficulty.
	MaxBits = 99
)

// Stamp is an immutable hashcash stamp. Minting returns a new Stamp and never
// changes the receiver. Build one with New or Parse.
type Stamp struct {
	bits     int
	date     time.Time
	resource string
	random   string
	counter  int64
}

// New validates the fields and returns a stamp. The date is truncated to its
// calendar day in UTC.
func New(bits int, date time.Time, resource, random string, counter int64) (Stamp, error) {
	if bits < MinBits || bits > MaxBits {
		return Stamp{}, fmt.Errorf("%w: bits %d not in [%d, %d]", ErrRange, bits, MinBits, MaxBits)
	}
	if strings.ContainsRune(resource, ':') {
		return Stamp{}, fmt.Errorf("%w: resource cannot contain a colon", ErrFormat)
	}
	if strings.ContainsRune(random, ':') {
		return Stamp{}, fmt.Errorf("%w: random cannot contain a colon", ErrFormat)
	}

	return Stamp{
		bits:     bits,
		date:     truncateDate(date),
		resource: resource,
		random:   random,
		counter:  counter,
	}, nil
}

func truncateDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s Stamp) Version() int { return Version }

func (s Stamp) Bits() int { return s.bits }

func (s Stamp) Date() time.Time { return s.date }

func (s Stamp) Resource() string { return s.resource }

// Extension is the reserved extension field. It is always empty.
func (s Stamp) Extension() string { return "" }

func (s Stamp) Random() string { return s.random }

func (s Stamp) Counter() int64 { return s.counter }

// WithCounter returns a copy of s carrying counter.
func (s Stamp) WithCounter(counter int64) Stamp {
	s.counter = counter
	return s
}

// WithDate returns a copy of s dated to the calendar day of date.
func (s Stamp) WithDate(date time.Time) Stamp {
	s.date = truncateDate(date)
	return s
}

// Equal reports whether both stamps have the same fields.
func (s Stamp) Equal(other Stamp) bool {
	return s.bits == other.bits &&
		s.date.Equal(other.date) &&
		s.resource == other.resource &&
		s.random == other.random &&
		s.counter == other.counter
}
