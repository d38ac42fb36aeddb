package services

import "testing"

func TestDatabaseBackendSelection(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	if got := databaseBackend(); got != POSTGRES_SVC {
		t.Fatalf("default backend = %s, want %s", got, POSTGRES_SVC)
	}

	t.Setenv("DB_DRIVER", "sqlite")
	if got := databaseBackend(); got != SQLITE_SVC {
		t.Fatalf("sqlite backend = %s, want %s", got, SQLITE_SVC)
	}

	t.Setenv("DB_DRIVER", "postgres")
	if got := databaseBackend(); got != POSTGRES_SVC {
		t.Fatalf("postgres backend = %s, want %s", got, POSTGRES_SVC)
	}
}
