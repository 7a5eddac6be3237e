package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID uint
}

func TestLockForUpdate(t *testing.T) {
	tests := []struct {
		name      string
		dialector gorm.Dialector
		locked    bool
	}{
		{"postgres", postgres.New(postgres.Config{DSN: "host=localhost user=buddy dbname=buddy sslmode=disable"}), true},
		{"sqlite", sqlite.Open("file::memory:"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := gorm.Open(tt.dialector, &gorm.Config{DryRun: true, DisableAutomaticPing: true})
			require.NoError(t, err)

			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var r row
				return LockForUpdate(tx).First(&r, 7)
			})
			assert.Equal(t, tt.locked, strings.Contains(sql, "FOR UPDATE"), sql)
		})
	}
}
