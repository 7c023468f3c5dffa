package database

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/autoseed/internal/database/memory"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database/sqlite"
)

var SupportedProviders = []string{"mongodb", "postgresql", "postgres", "mysql", "sqlite", "sqlite3", "memory"}

func NewStore(provider string) (Store, error) {
	switch provider {
	case "mongodb", "mongo", "":
		return mongodb.New(), nil
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s. Supported providers: %v", provider, SupportedProviders)
	}
}
