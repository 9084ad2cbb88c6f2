package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSweeperRunOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.approvedUser(t, "uma")
	p1 := env.printer(t, "A", 1.75)
	p2 := env.printer(t, "B", 1.75)

	short := env.job(t, user, p1.ID, 10)
	long := env.job(t, user, p2.ID, 120)
	for _, id := range []int64{short.ID, long.ID} {
		if _, err := env.svc.Jobs.Start(ctx, user, id); err != nil {
			t.Fatalf("start %d: %v", id, err)
		}
	}

	sweeper := NewCompletionSweeper(env.svc.Jobs, time.Minute, zap.NewNop(), nil)

	env.clock.Advance(5 * time.Minute)
	n, err := sweeper.RunOnce(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected nothing due, got %d %v", n, err)
	}

	env.clock.Advance(10 * time.Minute)
	n, err = sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 completion, got %d", n)
	}
	if env.printerState(t, p1.ID).Occupied {
		t.Fatalf("printer A should be released")
	}
	if !env.printerState(t, p2.ID).Occupied {
		t.Fatalf("printer B is still printing")
	}

	n, err = sweeper.RunOnce(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sweep should be a no-op, got %d %v", n, err)
	}
}

func TestSweeperRunForeverStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewCompletionSweeper(env.svc.Jobs, 10*time.Millisecond, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.RunForever(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.approvedUser(t, "vera")
	p := env.printer(t, "Audit", 1.75)
	j := env.job(t, user, p.ID, 5)
	if _, err := env.svc.Jobs.Start(ctx, user, j.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := env.svc.Audit.List(ctx, user, AuditQuery{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	entries, err := env.svc.Audit.List(ctx, env.admin, AuditQuery{EntityType: "job", EntityID: j.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected create and start entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ActorID != user.UserID {
			t.Fatalf("expected actor %d, got %d", user.UserID, e.ActorID)
		}
	}

	starts, err := env.svc.Audit.List(ctx, env.admin, AuditQuery{Action: "job.start"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(starts) != 1 || starts[0].IPAddress != "10.0.0.2" {
		t.Fatalf("unexpected start entries %+v", starts)
	}
}
