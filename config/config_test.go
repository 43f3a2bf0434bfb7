package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joripage/superorder/pkg/oms/dhan"
	"github.com/joripage/superorder/pkg/oms/instrument"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("dhan:\n  client_id: \"1000000001\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServiceName != "superorder" || cfg.Dhan.BaseURL != dhan.DefaultBaseURL {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Instruments.DownloadURL != instrument.DefaultMasterURL || cfg.Instruments.RedisKey != instrument.DefaultRedisKey {
		t.Errorf("unexpected instrument defaults %+v", cfg.Instruments)
	}
	if strings.Join(cfg.Instruments.Sources, ",") != "redis,db,file,s3,http" {
		t.Errorf("unexpected sources %v", cfg.Instruments.Sources)
	}
	if cfg.Events.Bus != BusNone || cfg.Events.Subject != "SUPERORDER.events" || cfg.Events.Kafka.Topic != "superorder.placement-events" {
		t.Errorf("unexpected event defaults %+v", cfg.Events)
	}
	if err := cfg.CheckDhanCredentials(); err == nil {
		t.Error("missing access token must be reported")
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("DHAN_ACCESS_TOKEN", "secret")
	cfg, err := Parse([]byte("dhan:\n  client_id: c\n  access_token: ${DHAN_ACCESS_TOKEN}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dhan.AccessToken != "secret" {
		t.Errorf("expected expanded token, got %q", cfg.Dhan.AccessToken)
	}
	if err := cfg.CheckDhanCredentials(); err != nil {
		t.Error(err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	data := `
validation:
  market_price_policy: guess
instruments:
  refresh_interval_seconds: -1
  sources: [redis, ftp]
  s3:
    bucket: masters
events:
  bus: kafka
  persist_to_db: true
`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{
		"market price policy",
		"refresh_interval_seconds",
		`unknown source "ftp"`,
		"instruments.s3.key",
		"events.kafka.brokers",
		"persist_to_db",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidateBus(t *testing.T) {
	if _, err := Parse([]byte("events:\n  bus: nats\n")); err == nil || !strings.Contains(err.Error(), "nats_url") {
		t.Errorf("expected nats_url error, got %v", err)
	}
	if _, err := Parse([]byte("events:\n  bus: rabbit\n")); err == nil {
		t.Error("expected unknown bus error")
	}
	if _, err := Parse([]byte("events:\n  bus: nats\n  nats_url: nats://localhost:4222\n")); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("config.example.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Instruments.RefreshInterval() < 0 {
		t.Errorf("unexpected refresh interval %s", cfg.Instruments.RefreshInterval())
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service_name: superorder-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServiceName != "superorder-test" {
		t.Errorf("unexpected service name %q", cfg.ServiceName)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
