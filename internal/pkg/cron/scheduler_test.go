package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	ran := make(chan struct{}, 1)
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunOnceContinuesAfterFailure(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.AddJob("fails", time.Hour, func(ctx context.Context) error {
		order = append(order, "fails")
		return errors.New("boom")
	})
	s.AddJob("succeeds", time.Hour, func(ctx context.Context) error {
		order = append(order, "succeeds")
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"fails", "succeeds"}, order)
}

func TestScheduler_StopsWithParentContext(t *testing.T) {
	s := NewScheduler()
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
