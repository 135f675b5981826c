package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"storefront-service/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "shop", DBPassword: "secret", DBHost: "db", DBPort: "3307", DBName: "storefront"}

	parsed, err := mysql.ParseDSN(DSN(cfg))
	require.NoError(t, err)
	require.Equal(t, "shop", parsed.User)
	require.Equal(t, "secret", parsed.Passwd)
	require.Equal(t, "db:3307", parsed.Addr)
	require.Equal(t, "storefront", parsed.DBName)
	require.True(t, parsed.ParseTime)
}
