// File: app/test_app.go
package app

import (
	"database/sql"
	"go-taskhub-api/service"
	"net/http"
)

// TestApp bundles a fully wired router with the database handle backing it.
// Integration tests construct one against a throwaway database instead of
// booting the real server.
type TestApp struct {
	DB     *sql.DB
	Router http.Handler
}

func NewTestApp(database *sql.DB, cache service.ICacheClient) *TestApp {
	return &TestApp{
		DB:     database,
		Router: buildRouter(database, cache),
	}
}
