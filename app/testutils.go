package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloghub/internal/common"
)

const testJWTSecret = "a-test-secret-that-is-long-enough-for-hs256"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatalf("could not decode %q: %v", responseBody, err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestConfig(t *testing.T) *Config {
	return &Config{
		Port:           "4000",
		Environment:    "test",
		Version:        "test",
		JWTSecret:      testJWTSecret,
		JWTIssuer:      "bloghub",
		JWTTTL:         time.Hour,
		UploadDir:      t.TempDir(),
		UploadBaseURL:  "http://localhost:4000",
		RequestTimeout: 5 * time.Second,
		CacheTTL:       time.Minute,
	}
}

// newTestApplication wires the application against a postgres container. Published events are kept in the returned producer.
func newTestApplication(t *testing.T) (*application, *sql.DB, *common.MockMessageProducer) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	producer := &common.MockMessageProducer{}

	app, err := newApplication(newTestConfig(t), logger, db, producer, nil)
	require.NoError(t, err)
	t.Cleanup(app.stopBackground)

	return app, db, producer
}

// newBareApplication is enough for middleware that touches neither the database nor the services.
func newBareApplication(t *testing.T, cfg *Config) *application {
	app := &application{
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: common.NewTestMetrics(),
		done:    make(chan struct{}),
	}

	t.Cleanup(app.stopBackground)

	return app
}

// signUpAndIn registers a user through the service layer and returns its access token.
func signUpAndIn(t *testing.T, app *application, name, email string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := app.userService.SignUp(ctx, name, email, "Test_1234!")
	require.NoError(t, err)

	_, token, err := app.userService.SignIn(ctx, email, "Test_1234!")
	require.NoError(t, err)

	return token.Plain
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token string) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, payload, token)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, token)
}

// dataOf returns the "data" member of a success envelope as an object.
func dataOf(t *testing.T, env envelope) map[string]any {
	d, ok := env["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", env)
	return d
}
