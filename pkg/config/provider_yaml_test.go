package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
feeds:
  - name: mcmurdo-sim
    type: simulator
    interval: 10
    capacity: 5
    min-temp: -18.0
    max-temp: -16.0
  - name: probe
    type: serial
    serialdevice: /dev/ttyUSB0
    baud: 9600
penguins:
  dataset: penguins.csv
  capacity: 10
  sample-size: 5
storage:
  livetcp:
    port: 9100
controllers:
  - type: rest
    rest:
      port: 8080
      grpc-health: true
      page-title: Antarctica Explorer
`

func writeTempYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTempYAML(t, sampleYAML))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(cfg.Feeds))
	}

	sim := cfg.Feeds[0]
	if sim.Name != "mcmurdo-sim" || sim.Type != "simulator" {
		t.Errorf("unexpected first feed: %+v", sim)
	}
	if sim.IntervalSecs != 10 || sim.Capacity != 5 {
		t.Errorf("unexpected interval/capacity: %+v", sim)
	}
	if sim.MinTemp != -18.0 || sim.MaxTemp != -16.0 {
		t.Errorf("unexpected temperature bounds: %+v", sim)
	}

	probe := cfg.Feeds[1]
	if probe.Type != "serial" || probe.SerialDevice != "/dev/ttyUSB0" || probe.Baud != 9600 {
		t.Errorf("unexpected serial feed: %+v", probe)
	}

	if cfg.Penguins == nil {
		t.Fatal("expected penguin config")
	}
	if cfg.Penguins.Dataset != "penguins.csv" || cfg.Penguins.Capacity != 10 || cfg.Penguins.SampleSize != 5 {
		t.Errorf("unexpected penguin config: %+v", cfg.Penguins)
	}

	if cfg.Storage.LiveTCP == nil || cfg.Storage.LiveTCP.Port != 9100 {
		t.Errorf("unexpected livetcp config: %+v", cfg.Storage.LiveTCP)
	}
	if cfg.Storage.Archive != nil {
		t.Errorf("expected no archive config, got %+v", cfg.Storage.Archive)
	}

	if len(cfg.Controllers) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(cfg.Controllers))
	}
	rest := cfg.Controllers[0].RESTServer
	if rest == nil || rest.Port != 8080 || !rest.GRPCHealth {
		t.Errorf("unexpected REST controller: %+v", rest)
	}
	if rest.PageTitle != "Antarctica Explorer" {
		t.Errorf("unexpected page title: %q", rest.PageTitle)
	}
}

func TestYAMLProviderAppliesDefaults(t *testing.T) {
	minimal := `
feeds:
  - name: sim
    type: simulator
penguins:
  dataset: penguins.csv
`
	provider := NewYAMLProvider(writeTempYAML(t, minimal))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Feeds[0].IntervalSecs != DefaultFeedIntervalSecs {
		t.Errorf("expected default interval %d, got %d", DefaultFeedIntervalSecs, cfg.Feeds[0].IntervalSecs)
	}
	if cfg.Feeds[0].Capacity != DefaultFeedCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultFeedCapacity, cfg.Feeds[0].Capacity)
	}
	if cfg.Penguins.Capacity != DefaultPenguinCapacity {
		t.Errorf("expected default penguin capacity %d, got %d", DefaultPenguinCapacity, cfg.Penguins.Capacity)
	}
	if cfg.Penguins.SampleSize != DefaultPenguinSampleSize {
		t.Errorf("expected default sample size %d, got %d", DefaultPenguinSampleSize, cfg.Penguins.SampleSize)
	}
	if cfg.Penguins.IntervalSecs != DefaultPenguinIntervalSecs {
		t.Errorf("expected default penguin interval %d, got %d", DefaultPenguinIntervalSecs, cfg.Penguins.IntervalSecs)
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestYAMLProviderIsReadOnly(t *testing.T) {
	provider := NewYAMLProvider("irrelevant.yaml")
	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}
