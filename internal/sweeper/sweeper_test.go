package sweeper_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/wpup/conauth/internal/domain"
	"github.com/wpup/conauth/internal/sweeper"
)

type fakeDirectory struct {
	purgeExpired func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (d *fakeDirectory) FindByID(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (d *fakeDirectory) FindByLogin(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (d *fakeDirectory) FindByEmail(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (d *fakeDirectory) SetPendingToken(context.Context, string, string, time.Time) error {
	return nil
}

func (d *fakeDirectory) ClaimPendingToken(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrTokenNotFound
}

func (d *fakeDirectory) PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	return d.purgeExpired(ctx, cutoff)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_BadCronSpec_Errors(t *testing.T) {
	_, err := sweeper.New(&fakeDirectory{}, "not a cron spec", 15*time.Minute, testLogger())
	if err == nil {
		t.Fatal("want error for invalid cron spec")
	}
}

func TestSweep_CutoffIsNowMinusTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time

	dir := &fakeDirectory{
		purgeExpired: func(_ context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 3, nil
		},
	}

	s, err := sweeper.New(dir, "*/5 * * * *", 15*time.Minute, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.WithClock(func() time.Time { return now })

	s.Sweep(context.Background())

	want := now.Add(-15 * time.Minute)
	if !gotCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, want)
	}
}

func TestSweep_PurgeError_DoesNotPanic(t *testing.T) {
	dir := &fakeDirectory{
		purgeExpired: func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	s, err := sweeper.New(dir, "*/5 * * * *", 15*time.Minute, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Sweep(context.Background())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	dir := &fakeDirectory{
		purgeExpired: func(context.Context, time.Time) (int64, error) { return 0, nil },
	}

	s, err := sweeper.New(dir, "*/5 * * * *", 15*time.Minute, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
