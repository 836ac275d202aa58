package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "postgres",
			Password:       "wrongpassword",
			Name:           "aero",
			Schema:         "ofmx",
			TimeoutSeconds: 2,
		}

		// Connect should fail (timeout or refused)
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Invalid Schema", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverPostgres, Host: "localhost", Port: 5432, Schema: "ofmx; DROP TABLE x"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		_, err := Connect(Config{Driver: "mysql"})
		assert.Error(t, err)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", db.Dialector.Name())
	})
}

func TestValidateSchemaName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"ofmx", true},
		{"_staging2", true},
		{"OFMX_2601", true},
		{"", false},
		{"2601", false},
		{"ofmx-test", false},
		{"public,evil", false},
		{`ofmx"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchemaName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
