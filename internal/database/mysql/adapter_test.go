package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDSN(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url  string
		want string
	}{
		"URL form":         {url: "mysql://seed:secret@db:3306/autoseed", want: "seed:secret@tcp(db:3306)/autoseed"},
		"SSL mode mapped":  {url: "mysql://seed:secret@db:3306/autoseed?ssl-mode=REQUIRED", want: "seed:secret@tcp(db:3306)/autoseed?tls=skip-verify"},
		"No credentials":   {url: "mysql://db:3306/autoseed", want: "tcp(db:3306)/autoseed"},
		"At in password":   {url: "mysql://seed:p@ss@db/autoseed", want: "seed:p@ss@tcp(db)/autoseed"},
		"Driver DSN as is": {url: "seed:secret@tcp(db:3306)/autoseed", want: "seed:secret@tcp(db:3306)/autoseed"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := toDSN(tc.url)
			assert.Equal(t, tc.want, got)
			_, err := driver.ParseDSN(got)
			require.NoError(t, err, "Driver must accept the converted DSN")
		})
	}
}

func TestDialect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "JSON_UNQUOTE(JSON_EXTRACT(doc, '$.name'))", dialect.FieldText("name"))

	stmts := dialect.CreateTable("car_brands")
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "seed_key VARCHAR(512) NOT NULL PRIMARY KEY")
	assert.Contains(t, stmts[0], "doc JSON NOT NULL")

	dup := fmt.Errorf("insert into car_brands: %w", &driver.MySQLError{Number: duplicateEntry, Message: "Duplicate entry"})
	assert.True(t, dialect.IsDuplicate(dup))
	assert.False(t, dialect.IsDuplicate(&driver.MySQLError{Number: 1146, Message: "Table doesn't exist"}))
	assert.False(t, dialect.IsDuplicate(errors.New("connection refused")))
}

func TestUnconnectedAdapter(t *testing.T) {
	t.Parallel()

	a := New()
	assert.Equal(t, "mysql", a.Provider())
	assert.False(t, a.HealthCheck(context.Background()).OK)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
