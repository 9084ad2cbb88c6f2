package core

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *db.Store
	registry *prometheus.Registry
	svc      *Services
	clock    *fakeClock
	logs     *observer.ObservedLogs
	admin    Caller
}

type envOption func(*Options)

func withDeductOnCompletion() envOption {
	return func(o *Options) { o.DeductEstimateOnCompletion = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "printq.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	obsCore, logs := observer.New(zapcore.DebugLevel)
	clock := newFakeClock()
	store := db.NewStore(database)
	registry := prometheus.NewRegistry()

	o := Options{
		Store:                  store,
		Logger:                 zap.New(obsCore),
		Metrics:                metrics.New(registry),
		Clock:                  clock,
		LowStockThresholdGrams: 50,
		BcryptCost:             bcrypt.MinCost,
	}
	for _, opt := range opts {
		opt(&o)
	}

	env := &testEnv{
		store:    store,
		registry: registry,
		svc:   NewServices(o),
		clock: clock,
		logs:  logs,
	}

	admin, err := env.svc.Users.EnsureAdmin(context.Background(), "Root Admin", "root@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	env.admin = CallerFor(admin, "127.0.0.1")
	return env
}

// approvedUser registers an account and has the admin approve it.
func (e *testEnv) approvedUser(t *testing.T, name string) Caller {
	t.Helper()
	ctx := context.Background()
	u, err := e.svc.Users.Register(ctx, Anonymous(""), Registration{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	u, err = e.svc.Users.ApplyAction(ctx, e.admin, u.ID, ActionApprove)
	if err != nil {
		t.Fatalf("approve %s: %v", name, err)
	}
	return CallerFor(u, "10.0.0.2")
}

func (e *testEnv) printer(t *testing.T, name string, diameters ...float64) *db.Printer {
	t.Helper()
	nozzle := 0.4
	p, err := e.svc.Printers.Create(context.Background(), e.admin, PrinterInput{
		Name:               name,
		NozzleSizeMM:       &nozzle,
		SupportedDiameters: diameters,
	})
	if err != nil {
		t.Fatalf("create printer %s: %v", name, err)
	}
	return p
}

func (e *testEnv) filament(t *testing.T, diameter, weight float64) *db.Filament {
	t.Helper()
	f, err := e.svc.Filaments.Create(context.Background(), e.admin, FilamentInput{
		Brand:       "Acme",
		Material:    "PLA",
		Color:       "orange",
		DiameterMM:  &diameter,
		WeightGrams: &weight,
	})
	if err != nil {
		t.Fatalf("create filament: %v", err)
	}
	return f
}

func (e *testEnv) job(t *testing.T, caller Caller, printerID int64, duration int) *JobView {
	t.Helper()
	res, err := e.svc.Jobs.Create(context.Background(), caller, JobInput{
		Name:            "part",
		ArtifactLink:    "https://files.example.com/part.gcode",
		DurationMinutes: duration,
		PrinterID:       printerID,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return res.Job
}

func (e *testEnv) printerState(t *testing.T, id int64) *db.Printer {
	t.Helper()
	p, err := e.store.Printers.GetPrinterByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get printer: %v", err)
	}
	return p
}

func (e *testEnv) filamentWeight(t *testing.T, id int64) float64 {
	t.Helper()
	f, err := e.store.Filaments.GetFilamentByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get filament: %v", err)
	}
	return f.WeightGrams
}

func ptr[T any](v T) *T {
	return &v
}

// gauge reads an unlabeled gauge from the test registry.
func (e *testEnv) gauge(t *testing.T, name string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) == 1 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("gauge %s not found", name)
	return 0
}
