package hashcash

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	dateLayout = "060102"

	versionLength = 1
	bitsLength    = 2
	dateLength    = 6
	colonCount    = 6

	// basicLength is the rendered size of a stamp with empty resource,
	// random and counter fields, e.g. "1:20:081216:::::".
	basicLength = versionLength + bitsLength + dateLength + colonCount

	counterSize      = 8
	maxCounterLength = 12
)

var (
	stampPattern = regexp.MustCompile(
		`^(\d):(\d{2}):(\d{6}):([^:]*)::([^:]*):((?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?)$`)

	_ fmt.Stringer = Stamp{}
)

// Length returns the exact number of bytes Format produces for s.
func (s Stamp) Length() int {
	return s.prefixLength() + counterLength(s.counter)
}

func (s Stamp) prefixLength() int {
	return basicLength + len(s.resource) + len(s.random)
}

// Format renders the canonical text of s.
func (s Stamp) Format() string {
	b, _ := s.AppendText(make([]byte, 0, s.Length()))
	return string(b)
}

func (s Stamp) String() string {
	return s.Format()
}

// AppendText appends the canonical text of s to b.
func (s Stamp) AppendText(b []byte) ([]byte, error) {
	start := len(b)
	b = s.appendPrefix(b)

	var counter [maxCounterLength]byte
	n := encodeCounter(counter[:], s.counter)
	b = append(b, counter[:n]...)

	if written, want := len(b)-start, s.Length(); written != want {
		panic(fmt.Sprintf("hashcash: rendered %d bytes, computed length %d", written, want))
	}
	return b, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Stamp) MarshalText() ([]byte, error) {
	return s.AppendText(make([]byte, 0, s.Length()))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stamp) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// appendPrefix appends everything up to and including the colon that
// precedes the counter.
func (s Stamp) appendPrefix(b []byte) []byte {
	b = strconv.AppendInt(b, Version, 10)
	b = append(b, ':', byte('0'+s.bits/10), byte('0'+s.bits%10), ':')
	b = s.date.AppendFormat(b, dateLayout)
	b = append(b, ':')
	b = append(b, s.resource...)
	b = append(b, ':', ':')
	b = append(b, s.random...)
	b = append(b, ':')
	return b
}

// Parse decodes canonical stamp text.
func Parse(text string) (Stamp, error) {
	m := stampPattern.FindStringSubmatch(text)
	if m == nil || len(m[6]) > maxCounterLength {
		return Stamp{}, fmt.Errorf("%w: %q", ErrFormat, text)
	}

	if m[1] != strconv.Itoa(Version) {
		return Stamp{}, fmt.Errorf("%w: unsupported version %s", ErrFormat, m[1])
	}

	bits, err := strconv.Atoi(m[2])
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: bits %q: %w", ErrFormat, m[2], err)
	}

	date, err := time.Parse(dateLayout, m[3])
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: date %q: %w", ErrFormat, m[3], err)
	}

	counter, err := decodeCounter(m[6])
	if err != nil {
		return Stamp{}, err
	}

	stamp, err := New(bits, date, m[4], m[5], counter)
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return stamp, nil
}

// trimmedCounter writes the little-endian bytes of counter to raw and returns
// how many remain once high-order zero bytes are dropped.
func trimmedCounter(raw *[counterSize]byte, counter int64) int {
	binary.LittleEndian.PutUint64(raw[:], uint64(counter))
	n := counterSize
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return n
}

func counterLength(counter int64) int {
	var raw [counterSize]byte
	return base64.StdEncoding.EncodedLen(trimmedCounter(&raw, counter))
}

// encodeCounter writes the base64 counter into dst, which must hold at least
// maxCounterLength bytes, and returns the number of bytes written.
func encodeCounter(dst []byte, counter int64) int {
	var raw [counterSize]byte
	n := trimmedCounter(&raw, counter)
	base64.StdEncoding.Encode(dst, raw[:n])
	return base64.StdEncoding.EncodedLen(n)
}

func decodeCounter(encoded string) (int64, error) {
	if encoded == "" {
		return 0, nil
	}

	var raw [counterSize + 1]byte
	n, err := base64.StdEncoding.Decode(raw[:], []byte(encoded))
	if err != nil {
		return 0, fmt.Errorf("%w: counter %q: %w", ErrFormat, encoded, err)
	}
	if n > counterSize {
		return 0, fmt.Errorf("%w: counter %q exceeds %d bytes", ErrFormat, encoded, counterSize)
	}
	return int64(binary.LittleEndian.Uint64(raw[:counterSize])), nil
}
