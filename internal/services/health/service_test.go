package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func TestStatusWithoutDependencies(t *testing.T) {
	report := NewService(nil, nil).Status(context.Background())
	if !report.OK {
		t.Fatalf("expected ok report")
	}
	if report.Components["database"] != "memory" || report.Components["markdown"] != "local" {
		t.Fatalf("unexpected components: %+v", report.Components)
	}
}

func TestStatusReportsDownDependency(t *testing.T) {
	svc := NewService(
		pingFunc(func(context.Context) error { return nil }),
		healthFunc(func(context.Context) error { return errors.New("connection refused") }),
	)
	report := svc.Status(context.Background())
	if report.OK {
		t.Fatalf("expected degraded report")
	}
	if report.Components["database"] != "up" || report.Components["markdown"] != "down" {
		t.Fatalf("unexpected components: %+v", report.Components)
	}
}

func TestStatusAppliesDeadline(t *testing.T) {
	svc := NewService(pingFunc(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	}), nil)
	if report := svc.Status(context.Background()); !report.OK {
		t.Fatalf("expected check to run with a deadline: %+v", report)
	}
}
