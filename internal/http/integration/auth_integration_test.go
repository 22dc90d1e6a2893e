package integration_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Nikita7465/React-TS-server/internal/config"
	"github.com/Nikita7465/React-TS-server/internal/db"
	apphttp "github.com/Nikita7465/React-TS-server/internal/http"
	"github.com/gin-gonic/gin"
)

func setupRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool, err := db.Open(filepath.Join(t.TempDir(), "integration.db"))

	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() { pool.Close() })

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := config.Config{
		Env:                "test",
		TokenTTLDays:       30,
		CORSAllowedOrigins: []string{"*"},
	}

	router := apphttp.NewRouter(logger, pool, cfg)

	return router, pool
}

func doRequest(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type messageResponse struct {
	Message string `json:"message"`
	User    *struct {
		JWT      string `json:"jwt"`
		UserData struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"userData"`
	} `json:"user"`
}

func countUsers(t *testing.T, pool *sql.DB, email string) int {
	t.Helper()

	var n int
	err := pool.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}

	return n
}

// Walks the full register/register/auth/auth flow against a real
// database file, asserting the exact wire contract.
func TestRegisterAndAuthenticateFlow(t *testing.T) {
	router, pool := setupRouter(t)

	// fresh email registers fine
	w := doRequest(router, "/register", `{"username":"alice","email":"a@x.com","password":"pw123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("register: got status %d, body=%s", w.Code, w.Body.String())
	}

	var registered messageResponse
	mustReadJSON(t, w, &registered)

	if registered.Message != "User successfully registered" {
		t.Fatalf("unexpected register message: %q", registered.Message)
	}

	if registered.User == nil || registered.User.JWT == "" {
		t.Fatalf("register response missing token: %s", w.Body.String())
	}

	if registered.User.UserData.Username != "alice" || registered.User.UserData.Email != "a@x.com" {
		t.Fatalf("unexpected userData: %+v", registered.User.UserData)
	}

	// the stored row holds a hash, not the plaintext
	var stored string
	if err := pool.QueryRow(`SELECT password FROM users WHERE email = ?`, "a@x.com").Scan(&stored); err != nil {
		t.Fatalf("hash lookup failed: %v", err)
	}

	if stored == "pw123" || bytes.Contains([]byte(stored), []byte("pw123")) {
		t.Fatalf("plaintext password was persisted: %q", stored)
	}

	// same body again is a conflict
	w = doRequest(router, "/register", `{"username":"alice","email":"a@x.com","password":"pw123"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: got status %d, body=%s", w.Code, w.Body.String())
	}

	if w.Body.String() != `{"message":"User already exists"}` {
		t.Fatalf("unexpected duplicate body: %s", w.Body.String())
	}

	if n := countUsers(t, pool, "a@x.com"); n != 1 {
		t.Fatalf("expected a single row for the email, got %d", n)
	}

	// correct password authenticates
	w = doRequest(router, "/auth", `{"email":"a@x.com","password":"pw123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("auth: got status %d, body=%s", w.Code, w.Body.String())
	}

	var authed messageResponse
	mustReadJSON(t, w, &authed)

	if authed.Message != "User authenticated successfully" {
		t.Fatalf("unexpected auth message: %q", authed.Message)
	}

	if authed.User == nil || authed.User.JWT == "" {
		t.Fatalf("auth response missing token: %s", w.Body.String())
	}

	// wrong password does not
	w = doRequest(router, "/auth", `{"email":"a@x.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad auth: got status %d, body=%s", w.Code, w.Body.String())
	}

	if w.Body.String() != `{"message":"Incorrect email or password"}` {
		t.Fatalf("unexpected bad auth body: %s", w.Body.String())
	}
}

func TestTwoUsersSamePasswordDifferentHashes(t *testing.T) {
	router, pool := setupRouter(t)

	doRequest(router, "/register", `{"username":"alice","email":"a@x.com","password":"shared"}`)
	doRequest(router, "/register", `{"username":"bob","email":"b@x.com","password":"shared"}`)

	var hashA, hashB string

	if err := pool.QueryRow(`SELECT password FROM users WHERE email = 'a@x.com'`).Scan(&hashA); err != nil {
		t.Fatalf("lookup a: %v", err)
	}

	if err := pool.QueryRow(`SELECT password FROM users WHERE email = 'b@x.com'`).Scan(&hashB); err != nil {
		t.Fatalf("lookup b: %v", err)
	}

	if hashA == hashB {
		t.Fatal("identical hashes for the same password, salts are not unique")
	}
}

// N concurrent registrations for one email: exactly one row survives,
// every loser sees the conflict response. The unique constraint, not
// the existence pre-check, is what enforces this.
func TestConcurrentRegistrationSameEmail(t *testing.T) {
	router, pool := setupRouter(t)

	const n = 8

	codes := make([]int, n)
	bodies := make([]string, n)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doRequest(router, "/register", `{"username":"alice","email":"race@x.com","password":"pw123"}`)
			codes[i] = w.Code
			bodies[i] = w.Body.String()
		}(i)
	}

	wg.Wait()

	success := 0
	conflicts := 0

	for i := 0; i < n; i++ {
		switch codes[i] {
		case http.StatusOK:
			success++
		case http.StatusBadRequest:
			conflicts++
			if bodies[i] != `{"message":"User already exists"}` {
				t.Fatalf("unexpected conflict body: %s", bodies[i])
			}
		default:
			t.Fatalf("unexpected status %d, body=%s", codes[i], bodies[i])
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", success)
	}

	if conflicts != n-1 {
		t.Fatalf("expected %d conflicts, got %d", n-1, conflicts)
	}

	if rows := countUsers(t, pool, "race@x.com"); rows != 1 {
		t.Fatalf("expected one stored row, got %d", rows)
	}
}
