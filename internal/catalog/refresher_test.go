// internal/catalog/refresher_test.go
package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"yojanamitra/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWarmer struct {
	err   error
	calls int
}

func (w *countingWarmer) Warm(ctx context.Context) (int, error) {
	w.calls++
	return 3, w.err
}

func TestNewRefresher_InvalidSchedule(t *testing.T) {
	_, err := NewRefresher(&countingWarmer{}, "every tuesday", logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestRefresher_Next(t *testing.T) {
	r, err := NewRefresher(&countingWarmer{}, "*/15 * * * *", logger.NewTestLogger(t))
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 10, 7, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC), r.Next(from))
}

func TestRefresher_RefreshOnce(t *testing.T) {
	w := &countingWarmer{}
	r, err := NewRefresher(w, "@hourly", logger.NewTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, r.RefreshOnce(context.Background()))
	assert.Equal(t, 1, w.calls)

	w.err = errors.New("source down")
	assert.Error(t, r.RefreshOnce(context.Background()))
}

func TestRefresher_RunStopsOnCancel(t *testing.T) {
	r, err := NewRefresher(&countingWarmer{}, "@yearly", logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
