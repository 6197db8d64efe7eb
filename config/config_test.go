package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/campusgrid/timetable/core/model"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `logging:
  level: "debug"
storage:
  backend: "postgres"
  dsn: "postgres://localhost:5432/timetable"
  migrate: true
locking:
  wait_ms: 500
metrics:
  prometheus_enabled: true
  prometheus_port: ":9090"
notify:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "timetable"
  topic_prefix: "campus"
constraints:
  - name: "capacity"
    type: "room_capacity"
    hard: true
    active: true
  - name: "dept-rooms"
    type: "department_preference"
    weight: 5
    active: true
catalog:
  subjects:
    - code: "CS201"
      name: "Data Structures"
      department: "CS"
      credits: 4
      active: true
  rooms:
    - number: "R101"
      type: "classroom"
      capacity: 40
      department: "CS"
      active: true
  slots:
    - day: "monday"
      start: "09:00"
      end: "10:00"
  sessions:
    - subject: "CS201"
      faculty: "F1"
      groups: ["CS-2-A"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %s", cfg.Logging.Level)
	}
	if cfg.Storage.Backend != "postgres" || !cfg.Storage.Migrate {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Locking.WaitMS != 500 {
		t.Errorf("wait = %d", cfg.Locking.WaitMS)
	}
	if !cfg.Metrics.PrometheusEnabled || cfg.Metrics.PrometheusPort != ":9090" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if !cfg.Notify.Enabled || cfg.Notify.Broker != "tcp://localhost:1883" {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	if len(cfg.Constraints) != 2 || !cfg.Constraints[0].Hard {
		t.Errorf("constraints = %+v", cfg.Constraints)
	}
	if len(cfg.Catalog.Subjects) != 1 || cfg.Catalog.Subjects[0].Code != "CS201" {
		t.Errorf("subjects = %+v", cfg.Catalog.Subjects)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "catalog: {}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default level = %s", cfg.Logging.Level)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("default backend = %s", cfg.Storage.Backend)
	}
	if cfg.Locking.WaitMS != 2000 {
		t.Errorf("default wait = %d", cfg.Locking.WaitMS)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad level", "logging:\n  level: \"loud\"\n"},
		{"postgres without dsn", "storage:\n  backend: \"postgres\"\n"},
		{"bad constraint", "constraints:\n  - name: \"soft-no-weight\"\n    type: \"department_preference\"\n    active: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TT_STORAGE__BACKEND", "postgres")
	t.Setenv("TT_STORAGE__DSN", "postgres://env:5432/tt")
	path := writeConfig(t, "storage:\n  backend: \"memory\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Storage.Backend != "postgres" || cfg.Storage.DSN != "postgres://env:5432/tt" {
		t.Errorf("env override not applied: %+v", cfg.Storage)
	}
}

func TestBuildCatalog(t *testing.T) {
	cc := CatalogConfig{
		Subjects: []model.Subject{{Code: "CS201", Name: "DS", Department: "CS", Credits: 4, Active: true}},
		Rooms:    []model.Room{{Number: "R101", Type: model.RoomClassroom, Capacity: 40, Active: true}},
		Slots:    []SlotConfig{{Day: "monday", Start: "09:00", End: "10:00"}},
		Availability: []AvailabilityConfig{
			{Faculty: "F1", Day: "tuesday", Start: "14:00", End: "16:00", Available: false, Reason: "committee"},
		},
	}
	cat, avail, err := cc.BuildCatalog()
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if _, err := cat.Subject("CS201"); err != nil {
		t.Errorf("subject missing: %v", err)
	}
	if len(cat.ActiveSlots()) != 1 {
		t.Errorf("slots = %d", len(cat.ActiveSlots()))
	}
	w, _ := model.NewWindow("14:30", "15:30")
	if ok, _ := avail.Allows("F1", model.Tuesday, w); ok {
		t.Error("unavailable window not enforced")
	}
}

func TestBuildCatalogRejectsBadSlot(t *testing.T) {
	cc := CatalogConfig{Slots: []SlotConfig{{Day: "funday", Start: "09:00", End: "10:00"}}}
	if _, _, err := cc.BuildCatalog(); err == nil {
		t.Fatal("expected error for unknown day")
	}
}
