package app

import (
	"context"
	"testing"

	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/internal/repository"
	"github.com/mamadbah2/decentfoods/internal/repository/jsonfile"
	"github.com/mamadbah2/decentfoods/internal/repository/memory"
)

func baseConfig() *config.Config {
	return &config.Config{
		Store:     config.StoreConfig{Driver: config.DriverMemory},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "Africa/Nairobi"},
		Business:  config.BusinessConfig{Name: "Decent Foods", Currency: "KSH"},
	}
}

func TestNewWiresMemoryStore(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	serial, ok := a.Store.(*repository.Serial)
	if !ok {
		t.Fatalf("expected store behind a Serial guard, got %T", a.Store)
	}
	if _, ok := serial.Store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", serial.Store)
	}
	if a.Reporting == nil || a.Ledger == nil || a.Bookkeeping == nil {
		t.Fatalf("services not wired")
	}
	if h := a.ExportHeader(); h.BusinessName != "Decent Foods" || h.Currency != "KSH" {
		t.Fatalf("unexpected header %+v", h)
	}
	if loc := a.Reporting.Now().Location().String(); loc != "Africa/Nairobi" {
		t.Fatalf("reporting not in business time zone: %s", loc)
	}
}

func TestNewWiresJSONStore(t *testing.T) {
	cfg := baseConfig()
	cfg.Store = config.StoreConfig{Driver: config.DriverJSON, DataDir: t.TempDir()}

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if serial, ok := a.Store.(*repository.Serial); !ok {
		t.Fatalf("expected store behind a Serial guard, got %T", a.Store)
	} else if _, ok := serial.Store.(*jsonfile.Store); !ok {
		t.Fatalf("expected json store, got %T", serial.Store)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := baseConfig()
	cfg.Store.Driver = "sqlite"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
