package integration_tests

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vcscsvcscs/nutrifast/internal/app"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/internal/config"
	"github.com/vcscsvcscs/nutrifast/internal/middleware"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

const adminPassword = "correct horse battery staple"

// testEnv is a fully wired API backed by a throwaway PostgreSQL
type testEnv struct {
	t      *testing.T
	router http.Handler
	token  string
}

// setupTestEnv starts PostgreSQL, wires the application exactly like main
// does and logs in as the admin
func setupTestEnv(t *testing.T) *testEnv {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("nutrifast_it"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Environment:     "test",
			ShutdownTimeout: 5 * time.Second,
			Timezone:        "UTC",
		},
		Database: config.DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    5,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
			AutoMigrate:     true,
		},
		Auth: config.AuthConfig{
			JWTSecret:         strings.Repeat("s", 40),
			TokenTTL:          time.Hour,
			AdminUsername:     "admin",
			AdminPasswordHash: hash,
		},
		Tasks: config.TasksConfig{Mode: "sync", Queue: "nutrifast-tasks"},
		Backup: config.BackupConfig{
			Provider:      "local",
			Dir:           t.TempDir(),
			EncryptionKey: hex.EncodeToString(bytes.Repeat([]byte{0x42}, 32)),
		},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}
	require.NoError(t, cfg.Validate())

	logger := zap.NewNop()
	application, err := app.New(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	metrics := middleware.NewMetrics()
	require.NoError(t, application.RegisterPoolMetrics(metrics.Registerer()))

	gin.SetMode(gin.TestMode)
	router, err := app.NewRouter(app.RouterDeps{
		Server:  application.Server,
		Tokens:  application.Auth,
		Metrics: metrics,
		Logger:  logger,
	})
	require.NoError(t, err)

	env := &testEnv{t: t, router: router}

	var token api.TokenResponse
	env.do("POST", "/api/v1/auth/login", map[string]string{"username": "admin", "password": adminPassword}, http.StatusOK, &token)
	require.NotEmpty(t, token.AccessToken)
	env.token = token.AccessToken

	return env
}

// raw performs a request with the admin token and returns the recorder
func (e *testEnv) raw(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// do performs a request, asserts the status and decodes the body into out
func (e *testEnv) do(method, path string, body any, status int, out any) {
	e.t.Helper()

	w := e.raw(method, path, body)
	require.Equal(e.t, status, w.Code, "%s %s: %s", method, path, w.Body.String())
	if out != nil {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
