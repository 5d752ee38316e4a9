package hashcash

import (
	"context"
	"sync/atomic"

	"github.com/goodnatureofminers/hashcash/pkg/safe"
)

// attemptsFlushInterval bounds how often a worker touches the shared attempts counter.
const attemptsFlushInterval = 1 << 12

// search holds the read-only state shared by every worker of one mint call.
type search struct {
	prefix    []byte
	bits      int
	algorithm Algorithm
	start     int64
	total     *atomic.Uint64
}

func newSearch(s Stamp, algorithm Algorithm, total *atomic.Uint64) search {
	return search{
		prefix:    s.appendPrefix(make([]byte, 0, s.prefixLength())),
		bits:      s.bits,
		algorithm: algorithm,
		start:     s.counter,
		total:     total,
	}
}

// run tests start+offset, start+offset+stride, ... up to math.MaxInt64.
// Only the counter tail of the worker's buffer is rewritten per candidate.
func (s search) run(ctx context.Context, offset, stride int64) (counter int64, attempts uint64, err error) {
	done := ctx.Done()

	hasher := s.algorithm.New()
	digest := make([]byte, 0, hasher.Size())
	buf := make([]byte, len(s.prefix)+maxCounterLength)
	copy(buf, s.prefix)
	tail := buf[len(s.prefix):]

	var pending uint64
	defer func() {
		s.total.Add(pending)
	}()

	counter, ok := safe.AddInt64(s.start, offset)
	for ok {
		select {
		case <-done:
			return 0, attempts, cancelled(ctx.Err())
		default:
		}

		n := encodeCounter(tail, counter)
		hasher.Reset()
		_, _ = hasher.Write(buf[:len(s.prefix)+n])
		digest = hasher.Sum(digest[:0])

		attempts++
		pending++
		if pending == attemptsFlushInterval {
			s.total.Add(pending)
			pending = 0
		}

		if Passes(digest, s.bits) {
			return counter, attempts, nil
		}
		counter, ok = safe.AddInt64(counter, stride)
	}
	return 0, attempts, ErrExhausted
}
