package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink accepts records at or above min and counts them.
type recordingSink struct {
	min     slog.Level
	handled int
	err     error
}

func (r *recordingSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.min
}

func (r *recordingSink) Handle(context.Context, slog.Record) error {
	r.handled++
	return r.err
}

func (r *recordingSink) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recordingSink) WithGroup(string) slog.Handler      { return r }

func TestFanoutRespectsSinkLevels(t *testing.T) {
	stdout := &recordingSink{min: slog.LevelInfo}
	pg := &recordingSink{min: slog.LevelError}
	logger := slog.New(Fanout(stdout, pg))

	logger.Info("booking created")
	logger.Error("provisioning gave up")

	assert.Equal(t, 2, stdout.handled)
	assert.Equal(t, 1, pg.handled)
}

func TestFanoutEnabledWhenAnySinkIs(t *testing.T) {
	h := Fanout(&recordingSink{min: slog.LevelError}, &recordingSink{min: slog.LevelDebug})

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, Fanout(&recordingSink{min: slog.LevelError}).Enabled(context.Background(), slog.LevelInfo))
}

func TestFanoutDeliversPastFailingSink(t *testing.T) {
	broken := &recordingSink{min: slog.LevelInfo, err: errors.New("insert failed")}
	healthy := &recordingSink{min: slog.LevelInfo}
	h := Fanout(broken, healthy)

	var rec slog.Record
	rec.Level = slog.LevelInfo
	err := h.Handle(context.Background(), rec)

	require.Error(t, err)
	assert.Equal(t, 1, healthy.handled)
}
