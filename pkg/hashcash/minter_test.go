package hashcash

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

func digestOf(t *testing.T, a Algorithm, text string) []byte {
	t.Helper()

	h := a.New()
	_, _ = h.Write([]byte(text))
	return h.Sum(nil)
}

func TestMinter_MintFindsFirstCounter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		algorithm Algorithm
		want      string
	}{
		{name: "sha1", algorithm: SHA1, want: "1:16:240102:test@example.com::salt:zNAB"},
		{name: "md5", algorithm: MD5, want: "1:16:240102:test@example.com::salt:zlk="},
		{name: "sha256", algorithm: SHA256, want: "1:16:240102:test@example.com::salt:C7g="},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seed := mustStamp(t, 16, testDate, "test@example.com", "salt", 0)
			minted, err := NewMinter(zap.NewNop(), nil).Mint(context.Background(), seed, tt.algorithm)
			require.NoError(t, err)

			assert.Equal(t, tt.want, minted.Format())
			assert.Zero(t, seed.Counter(), "seed must not change")
			assert.True(t, Passes(digestOf(t, tt.algorithm, minted.Format()), 16))
		})
	}
}

func TestMinter_MintNonASCIIResource(t *testing.T) {
	t.Parallel()

	seed := mustStamp(t, 12, time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC), "résumé", "nonce", 0)
	minted, err := seed.Mint(context.Background(), SHA1)
	require.NoError(t, err)

	assert.Equal(t, int64(456), minted.Counter())
	assert.Equal(t, "1:12:991231:résumé::nonce:yAE=", minted.Format())
}

func TestMinter_MintStartsAtSeedCounter(t *testing.T) {
	t.Parallel()

	seed := mustStamp(t, 20, time.Date(2006, time.April, 8, 0, 0, 0, 0, time.UTC), "adam@cypherspace.org", "1QTjaYd7niiQA/sc", 0xF678-5)
	minted, err := seed.Mint(context.Background(), SHA1)
	require.NoError(t, err)

	assert.Equal(t, int64(163370), minted.Counter())
}

func TestMinter_MintedStampsVerify(t *testing.T) {
	t.Parallel()

	m := NewMinter(zap.NewNop(), nil)
	for _, a := range Algorithms() {
		a := a
		t.Run(a.Name(), func(t *testing.T) {
			t.Parallel()

			seed := mustStamp(t, 14, testDate, "verify@example.com", a.Name(), 0)

			single, err := m.Mint(context.Background(), seed, a)
			require.NoError(t, err)
			parallel, err := m.MintParallel(context.Background(), seed, a, 4)
			require.NoError(t, err)

			for _, minted := range []Stamp{single, parallel} {
				valid, err := m.Verify(minted, a)
				require.NoError(t, err)
				assert.True(t, valid)
				assert.True(t, Passes(digestOf(t, a, minted.Format()), minted.Bits()))

				reparsed, err := Parse(minted.Format())
				require.NoError(t, err)
				assert.Equal(t, minted, reparsed)
			}
			assert.LessOrEqual(t, single.Counter(), parallel.Counter(),
				"no counter below the first valid one can win")
		})
	}
}

func TestMinter_MintParallelSingleWorkerMatchesMint(t *testing.T) {
	t.Parallel()

	seed := mustStamp(t, 16, testDate, "test@example.com", "salt", 0)
	minted, err := seed.MintParallel(context.Background(), SHA1, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(118988), minted.Counter())
}

func TestMinter_MintParallelRejectsWorkerCount(t *testing.T) {
	t.Parallel()

	seed := mustStamp(t, 16, testDate, "r", "", 0)
	for _, workers := range []int{0, -1} {
		_, err := seed.MintParallel(context.Background(), SHA1, workers)
		assert.ErrorIs(t, err, ErrRange)
	}
}

func TestMinter_AlgorithmErrorsBeforeSearch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	metrics := NewMockMetrics(ctrl)
	metrics.EXPECT().
		ObserveMint("SHORT", 1, gomock.Any(), uint64(0), gomock.Any()).
		Do(func(_ string, _ int, err error, _ uint64, _ time.Time) {
			if !errors.Is(err, ErrAlgorithm) {
				t.Errorf("unexpected error propagated to metrics: %v", err)
			}
		})

	short := Algorithm{name: "SHORT", size: 2, new: MD5.new}
	seed := mustStamp(t, 17, testDate, "r", "", 0)

	m := NewMinter(zap.NewNop(), metrics)
	_, err := m.Mint(context.Background(), seed, short)
	require.ErrorIs(t, err, ErrAlgorithm)
	assert.Zero(t, m.Attempts())

	_, err = seed.Mint(context.Background(), Algorithm{})
	require.ErrorIs(t, err, ErrAlgorithm)
}

func TestMinter_PreCancelledContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		mint    func(m *Minter, ctx context.Context, s Stamp) (Stamp, error)
	}{
		{
			name:    "single",
			workers: 1,
			mint: func(m *Minter, ctx context.Context, s Stamp) (Stamp, error) {
				return m.Mint(ctx, s, SHA1)
			},
		},
		{
			name:    "parallel",
			workers: 8,
			mint: func(m *Minter, ctx context.Context, s Stamp) (Stamp, error) {
				return m.MintParallel(ctx, s, SHA1, 8)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			metrics := NewMockMetrics(ctrl)
			metrics.EXPECT().
				ObserveMint("SHA1", tt.workers, gomock.Any(), uint64(0), gomock.AssignableToTypeOf(time.Time{}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			m := NewMinter(zap.NewNop(), metrics)
			_, err := tt.mint(m, ctx, mustStamp(t, 20, testDate, "r", "", 0))

			require.ErrorIs(t, err, ErrCancelled)
			assert.ErrorIs(t, err, context.Canceled)
			assert.NotErrorIs(t, err, ErrExhausted)
			assert.Zero(t, m.Attempts(), "no hashing after cancellation")
		})
	}
}

func TestMinter_CancelDuringSearch(t *testing.T) {
	t.Parallel()

	// 99 bits is out of reach, so only cancellation can end the search.
	seed := mustStamp(t, MaxBits, testDate, "r", "", 0)

	for _, workers := range []int{1, 4} {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)

		m := NewMinter(zap.NewNop(), nil)
		var err error
		if workers == 1 {
			_, err = m.Mint(ctx, seed, SHA256)
		} else {
			_, err = m.MintParallel(ctx, seed, SHA256, workers)
		}
		cancel()

		require.ErrorIs(t, err, ErrCancelled)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Positive(t, m.Attempts())
	}
}

func TestMinter_Exhausted(t *testing.T) {
	t.Parallel()

	// A handful of candidates below math.MaxInt64 at 64 bits cannot plausibly pass.
	seed := mustStamp(t, 64, testDate, "r", "", math.MaxInt64-5)

	ctrl := gomock.NewController(t)
	metrics := NewMockMetrics(ctrl)
	gomock.InOrder(
		metrics.EXPECT().ObserveMint("SHA1", 1, ErrExhausted, uint64(6), gomock.Any()),
		metrics.EXPECT().ObserveMint("SHA1", 3, ErrExhausted, uint64(6), gomock.Any()),
		metrics.EXPECT().ObserveMint("SHA1", 16, ErrExhausted, uint64(6), gomock.Any()),
	)

	m := NewMinter(zap.NewNop(), metrics)

	_, err := m.Mint(context.Background(), seed, SHA1)
	require.ErrorIs(t, err, ErrExhausted)

	_, err = m.MintParallel(context.Background(), seed, SHA1, 3)
	require.ErrorIs(t, err, ErrExhausted)

	// Workers whose first candidate overflows have nothing to search.
	_, err = m.MintParallel(context.Background(), seed, SHA1, 16)
	require.ErrorIs(t, err, ErrExhausted)
	assert.NotErrorIs(t, err, ErrCancelled)

	assert.Equal(t, uint64(18), m.Attempts())
}

func TestMinter_Verify(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	metrics := NewMockMetrics(ctrl)
	gomock.InOrder(
		metrics.EXPECT().ObserveVerify("SHA1", true, nil),
		metrics.EXPECT().ObserveVerify("SHA1", false, nil),
		metrics.EXPECT().ObserveVerify("MD5", false, nil),
	)

	m := NewMinter(zap.NewNop(), metrics)
	minted := mustStamp(t, 16, testDate, "test@example.com", "salt", 118988)

	valid, err := m.Verify(minted, SHA1)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = m.Verify(minted.WithCounter(118987), SHA1)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = m.Verify(minted, MD5)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestMinter_VerifyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		algorithm Algorithm
		want      bool
		wantErr   []error
	}{
		{
			name:      "published sha1 vector with unpadded counter",
			text:      "1:20:060408:adam@cypherspace.org::1QTjaYd7niiQA/sc:ePa",
			algorithm: SHA1,
			want:      true,
		},
		{
			name:      "published vector with another digest",
			text:      "1:20:060408:adam@cypherspace.org::1QTjaYd7niiQA/sc:ePa",
			algorithm: SHA256,
			want:      false,
		},
		{
			name:      "canonical minted stamp",
			text:      "1:16:240102:test@example.com::salt:zNAB",
			algorithm: SHA1,
			want:      true,
		},
		{
			name:      "tampered resource",
			text:      "1:16:240102:test@example.org::salt:zNAB",
			algorithm: SHA1,
			want:      false,
		},
		{
			name:      "bad version",
			text:      "2:20:060408:adam@cypherspace.org::1QTjaYd7niiQA/sc:ePa",
			algorithm: SHA1,
			wantErr:   []error{ErrFormat},
		},
		{
			name:      "short header",
			text:      "1:2",
			algorithm: SHA1,
			wantErr:   []error{ErrFormat},
		},
		{
			name:      "bits out of range",
			text:      "1:09:060408:r::s:",
			algorithm: SHA1,
			wantErr:   []error{ErrFormat, ErrRange},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewMinter(nil, nil).VerifyText(tt.text, tt.algorithm)
			if len(tt.wantErr) > 0 {
				for _, want := range tt.wantErr {
					assert.ErrorIs(t, err, want)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinter_AttemptsAccumulate(t *testing.T) {
	t.Parallel()

	m := NewMinter(nil, nil)
	seed := mustStamp(t, 16, testDate, "test@example.com", "salt", 0)

	_, err := m.Mint(context.Background(), seed, SHA1)
	require.NoError(t, err)
	assert.Equal(t, uint64(118989), m.Attempts())
}
