package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appconfig "github.com/GTDGit/gtd_shop/internal/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		User: "shop", Password: "p@ss:word", Host: "db", Port: "5432", Name: "shop", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://shop:p%40ss%3Aword@db:5432/shop?sslmode=disable", dsn)
}

func TestBackoffIsCapped(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(3))
	assert.Equal(t, 5*time.Second, backoff(5))
}
