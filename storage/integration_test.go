package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// TestMySQLStorage exercises the full storage against a real MySQL server.
// Set RUN_INTEGRATION_TESTS=true and MYSQL_DSN to run it.
func TestMySQLStorage(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL test. Set MYSQL_DSN environment variable")
	}

	s, err := NewStorage(
		Config{
			Driver:   DriverMySQL,
			DSN:      dsn,
			MediaDir: filepath.Join(t.TempDir(), "media"),
		},
	)
	if err != nil {
		t.Fatalf("Failed to create MySQL storage: %v", err)
	}
	exerciseStorage(t, s)
}

// TestPostgresStorage exercises the full storage against a real PostgreSQL
// server. Set RUN_INTEGRATION_TESTS=true and POSTGRES_DSN to run it.
func TestPostgresStorage(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test. Set POSTGRES_DSN environment variable")
	}

	s, err := NewStorage(
		Config{
			Driver:   DriverPostgres,
			DSN:      dsn,
			MediaDir: filepath.Join(t.TempDir(), "media"),
		},
	)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL storage: %v", err)
	}
	exerciseStorage(t, s)
}

// exerciseStorage runs a minimal create/reorder/fan-out cycle against a
// live database
func exerciseStorage(t *testing.T, s *Storage) {
	t.Helper()

	c, err := s.CasesStorage().Create(model.AddCase{Identificacao: "integracao/0001"})
	if err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}
	defer func() {
		if err := s.CasesStorage().Delete(c.ID); err != nil {
			t.Errorf("Failed to clean up case: %v", err)
		}
	}()

	st, err := s.StatusTypesStorage().Create(model.AddStatusType{Nome: "integracao", Ordem: 1})
	if err != nil {
		t.Fatalf("Failed to create status type: %v", err)
	}
	defer func() {
		if err := s.StatusTypesStorage().Delete(st.ID); err != nil {
			t.Errorf("Failed to clean up status type: %v", err)
		}
	}()

	if _, err = s.StatusEventsStorage().Create(
		model.AddStatusEvent{CaseID: c.ID, StatusTypeID: st.ID},
	); err != nil {
		t.Fatalf("Failed to create status event: %v", err)
	}
	latest, err := s.CasesStorage().LatestStatus(c.ID)
	if err != nil {
		t.Fatalf("Failed to read latest status: %v", err)
	}
	if latest == nil || latest.StatusTypeID != st.ID {
		t.Fatal("Latest status does not match the created event")
	}
}
