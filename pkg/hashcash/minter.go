package hashcash

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/hashcash/pkg/safe"
	"github.com/goodnatureofminers/hashcash/pkg/workerpool"
	"go.uber.org/zap"
)

// Minter searches for valid counters and verifies stamps.
// It is safe for concurrent use.
type Minter struct {
	logger   *zap.Logger
	metrics  Metrics
	attempts atomic.Uint64
}

var defaultMinter = NewMinter(nil, nil)

// NewMinter builds a Minter. A nil logger logs nothing and nil metrics are not observed.
func NewMinter(logger *zap.Logger, metrics Metrics) *Minter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Minter{
		logger:  logger.Named("minter"),
		metrics: metrics,
	}
}

// Attempts returns how many digests this Minter has computed while minting.
func (m *Minter) Attempts() uint64 {
	return m.attempts.Load()
}

// Mint searches counters upward from s.Counter() on the calling goroutine and
// returns the first stamp whose digest passes.
func (m *Minter) Mint(ctx context.Context, s Stamp, algorithm Algorithm) (Stamp, error) {
	return m.mint(ctx, s, algorithm, 1, false)
}

// MintParallel splits the counter space between workerCount goroutines, worker
// i testing s.Counter()+i, s.Counter()+i+workerCount, ... The first worker to
// find a passing counter wins and the rest are cancelled. Which counter wins
// is not deterministic.
func (m *Minter) MintParallel(ctx context.Context, s Stamp, algorithm Algorithm, workerCount int) (Stamp, error) {
	if workerCount < 1 {
		return Stamp{}, fmt.Errorf("%w: worker count %d", ErrRange, workerCount)
	}
	return m.mint(ctx, s, algorithm, workerCount, true)
}

func (m *Minter) mint(ctx context.Context, s Stamp, algorithm Algorithm, workers int, parallel bool) (_ Stamp, err error) {
	started := time.Now()
	var attempts atomic.Uint64
	defer func() {
		m.observeMint(algorithm.Name(), workers, err, attempts.Load(), started)
	}()

	if err = algorithm.supports(s.bits); err != nil {
		return Stamp{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Stamp{}, cancelled(ctxErr)
	}

	logger := m.logger.With(
		zap.String("algorithm", algorithm.Name()),
		zap.Int("bits", s.bits),
		zap.String("resource", s.resource),
		zap.Int("workers", workers),
	)
	logger.Debug("mint started", zap.Int64("start", s.counter))

	srch := newSearch(s, algorithm, &m.attempts)
	var counter int64
	if parallel {
		counter, err = m.race(ctx, srch, workers, &attempts)
	} else {
		var n uint64
		counter, n, err = srch.run(ctx, 0, 1)
		attempts.Add(n)
	}

	fields := []zap.Field{
		zap.Uint64("attempts", attempts.Load()),
		zap.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		logger.Warn("mint failed", append(fields, zap.Error(err))...)
		return Stamp{}, err
	}
	logger.Debug("mint finished", append(fields, zap.Int64("counter", counter))...)
	return s.WithCounter(counter), nil
}

func (m *Minter) race(ctx context.Context, srch search, workers int, attempts *atomic.Uint64) (int64, error) {
	stride, err := safe.Int64(workers)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRange, err)
	}

	counter, err := workerpool.Race(ctx, workers, func(ctx context.Context, worker int) (int64, error) {
		offset, err := safe.Int64(worker)
		if err != nil {
			return 0, err
		}
		c, n, err := srch.run(ctx, offset, stride)
		attempts.Add(n)
		return c, err
	})
	if err == nil {
		return counter, nil
	}

	// Every worker failed: report cancellation if the caller gave up,
	// exhaustion if each progression ran out.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, cancelled(ctxErr)
	}
	if errors.Is(err, ErrExhausted) && !errors.Is(err, ErrCancelled) {
		return 0, ErrExhausted
	}
	return 0, err
}

// Verify renders s and reports whether its digest passes for s.Bits().
func (m *Minter) Verify(s Stamp, algorithm Algorithm) (valid bool, err error) {
	defer func() {
		m.observeVerify(algorithm.Name(), valid, err)
	}()

	if err = algorithm.supports(s.bits); err != nil {
		return false, err
	}

	text, err := s.AppendText(make([]byte, 0, s.Length()))
	if err != nil {
		return false, err
	}
	return digestPasses(algorithm, text, s.bits), nil
}

// VerifyText hashes text exactly as given and reports whether it passes for
// the bits in its header. Only the "1:BB:" header is validated, so stamps with
// a counter encoding this package would not produce can still be checked.
func (m *Minter) VerifyText(text string, algorithm Algorithm) (valid bool, err error) {
	defer func() {
		m.observeVerify(algorithm.Name(), valid, err)
	}()

	bits, err := headerBits(text)
	if err != nil {
		return false, err
	}
	if err = algorithm.supports(bits); err != nil {
		return false, err
	}
	return digestPasses(algorithm, []byte(text), bits), nil
}

func headerBits(text string) (int, error) {
	const headerLength = versionLength + bitsLength + 2
	if len(text) < headerLength || text[0] != '0'+Version || text[1] != ':' || text[4] != ':' ||
		!isDigit(text[2]) || !isDigit(text[3]) {
		return 0, fmt.Errorf("%w: header of %q", ErrFormat, text)
	}
	bits := int(text[2]-'0')*10 + int(text[3]-'0')
	if bits < MinBits || bits > MaxBits {
		return 0, fmt.Errorf("%w: %w: bits %d not in [%d, %d]", ErrFormat, ErrRange, bits, MinBits, MaxBits)
	}
	return bits, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digestPasses(algorithm Algorithm, data []byte, bits int) bool {
	hasher := algorithm.New()
	_, _ = hasher.Write(data)
	return Passes(hasher.Sum(nil), bits)
}

func (m *Minter) observeMint(algorithm string, workers int, err error, attempts uint64, started time.Time) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveMint(algorithm, workers, err, attempts, started)
}

func (m *Minter) observeVerify(algorithm string, valid bool, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveVerify(algorithm, valid, err)
}

// Mint searches for a passing counter with the package's default Minter.
func (s Stamp) Mint(ctx context.Context, algorithm Algorithm) (Stamp, error) {
	return defaultMinter.Mint(ctx, s, algorithm)
}

// MintParallel searches with workerCount goroutines using the package's default Minter.
func (s Stamp) MintParallel(ctx context.Context, algorithm Algorithm, workerCount int) (Stamp, error) {
	return defaultMinter.MintParallel(ctx, s, algorithm, workerCount)
}

// Verify reports whether s passes for algorithm.
func (s Stamp) Verify(algorithm Algorithm) (bool, error) {
	return defaultMinter.Verify(s, algorithm)
}
