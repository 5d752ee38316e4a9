package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goodnatureofminers/hashcash/internal/clock"
	"github.com/goodnatureofminers/hashcash/pkg/hashcash"
	"github.com/goodnatureofminers/hashcash/pkg/workerpool"
	"go.uber.org/zap"
)

// randomBytes is the entropy behind a generated random field; 12 bytes encode
// to 16 base64 characters without padding.
const randomBytes = 12

type app struct {
	cfg       config
	algorithm hashcash.Algorithm
	minter    *hashcash.Minter
	logger    *zap.Logger
	out       io.Writer
	now       func() time.Time
}

func (a *app) seed() (hashcash.Stamp, error) {
	if a.cfg.Resource == "" {
		return hashcash.Stamp{}, errors.New("resource is required to mint")
	}

	date := a.now()
	if a.cfg.Date != "" {
		parsed, err := time.Parse("060102", a.cfg.Date)
		if err != nil {
			return hashcash.Stamp{}, fmt.Errorf("parse date %q: %w", a.cfg.Date, err)
		}
		date = parsed
	}

	random := a.cfg.Random
	if random == "" {
		buf := make([]byte, randomBytes)
		if _, err := rand.Read(buf); err != nil {
			return hashcash.Stamp{}, fmt.Errorf("generate random field: %w", err)
		}
		random = base64.StdEncoding.EncodeToString(buf)
	}

	return hashcash.New(a.cfg.Bits, date, a.cfg.Resource, random, 0)
}

func (a *app) mint(ctx context.Context) error {
	seed, err := a.seed()
	if err != nil {
		return err
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	baseline := a.minter.Attempts()
	go clock.Every(progressCtx, a.cfg.Progress, func(elapsed time.Duration) {
		attempts := a.minter.Attempts() - baseline
		a.logger.Info("minting",
			zap.Uint64("attempts", attempts),
			zap.Float64("hashes_per_second", float64(attempts)/elapsed.Seconds()),
			zap.Duration("elapsed", elapsed),
		)
	})

	var minted hashcash.Stamp
	if a.cfg.Workers > 1 {
		minted, err = a.minter.MintParallel(ctx, seed, a.algorithm, a.cfg.Workers)
	} else {
		minted, err = a.minter.Mint(ctx, seed, a.algorithm)
	}
	if err != nil {
		return fmt.Errorf("mint %s: %w", seed.Resource(), err)
	}

	_, err = fmt.Fprintln(a.out, minted.Format())
	return err
}

// verify checks every --verify stamp and reports whether all of them passed.
func (a *app) verify(ctx context.Context) (bool, error) {
	results, err := workerpool.Map(ctx, a.cfg.VerifyConcurrency, a.cfg.Verify,
		func(_ context.Context, text string) (bool, error) {
			valid, err := a.minter.VerifyText(text, a.algorithm)
			if err != nil {
				a.logger.Warn("stamp rejected", zap.String("stamp", text), zap.Error(err))
				return false, nil
			}
			return valid, nil
		})
	if err != nil {
		return false, fmt.Errorf("verify stamps: %w", err)
	}

	allValid := true
	for i, valid := range results {
		verdict := "valid"
		if !valid {
			verdict = "invalid"
			allValid = false
		}
		if _, err := fmt.Fprintf(a.out, "%s\t%s\n", verdict, a.cfg.Verify[i]); err != nil {
			return false, err
		}
	}
	return allValid, nil
}
