package location

import (
	"context"
	"errors"
	"time"
)

// DefaultPositionTimeout bounds a single device position request.
const DefaultPositionTimeout = 15 * time.Second

// PositionOptions mirrors the knobs a device geolocation API exposes.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultPositionOptions asks for a fresh, high accuracy fix.
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{
		EnableHighAccuracy: true,
		Timeout:            DefaultPositionTimeout,
		MaximumAge:         0,
	}
}

// PositionProvider acquires the device position. Implementations report
// failures with ErrGeoPermissionDenied, ErrGeoPositionUnavailable or ErrGeoTimeout.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (DevicePosition, error)
}

// ProviderFunc adapts a function to PositionProvider.
type ProviderFunc func(ctx context.Context, opts PositionOptions) (DevicePosition, error)

func (f ProviderFunc) CurrentPosition(ctx context.Context, opts PositionOptions) (DevicePosition, error) {
	return f(ctx, opts)
}

type timeoutProvider struct {
	next PositionProvider
}

// WithTimeout wraps p so every request resolves within opts.Timeout
// (DefaultPositionTimeout when unset). A provider that ignores its context
// is abandoned and the caller gets ErrGeoTimeout.
func WithTimeout(p PositionProvider) PositionProvider {
	return &timeoutProvider{next: p}
}

type positionResult struct {
	pos DevicePosition
	err error
}

func (t *timeoutProvider) CurrentPosition(ctx context.Context, opts PositionOptions) (DevicePosition, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultPositionTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan positionResult, 1)
	go func() {
		pos, err := t.next.CurrentPosition(ctx, opts)
		done <- positionResult{pos: pos, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return DevicePosition{}, ErrGeoTimeout
		}
		return res.pos, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return DevicePosition{}, ErrGeoTimeout
		}
		return DevicePosition{}, ctx.Err()
	}
}

// Fixed is a PositionProvider that always reports the same coordinates,
// stamped with the time of the request. Used by the CLI, where the
// coordinates come from flags or a GPS daemon upstream.
type Fixed struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Now            func() time.Time
}

func (f Fixed) CurrentPosition(ctx context.Context, _ PositionOptions) (DevicePosition, error) {
	if err := ctx.Err(); err != nil {
		return DevicePosition{}, err
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return DevicePosition{
		Latitude:       f.Latitude,
		Longitude:      f.Longitude,
		AccuracyMeters: f.AccuracyMeters,
		CapturedAt:     now(),
	}, nil
}
