package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		provider string

		want    string
		wantErr bool
	}{
		"Default is MongoDB": {provider: "", want: "mongodb"},
		"MongoDB alias":      {provider: "mongo", want: "mongodb"},
		"PostgreSQL":         {provider: "postgres", want: "postgresql"},
		"MySQL":              {provider: "mysql", want: "mysql"},
		"SQLite alias":       {provider: "sqlite3", want: "sqlite"},
		"Memory":             {provider: "memory", want: "memory"},
		"Unknown":            {provider: "oracle", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(tc.provider)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, store.Provider())
		})
	}
}
