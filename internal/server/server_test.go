package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/internal/auth"
	"github.com/mmynk/duesbook/internal/ledger"
	"github.com/mmynk/duesbook/internal/storage/sqlite"
	"github.com/mmynk/duesbook/pkg/api"
	"github.com/mmynk/duesbook/pkg/api/apiconnect"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("server-test-secret-0123456789", time.Hour)
	srv := New(ledger.New(store, ledger.WithLogger(logger)), store, auth.NewPasswordAuthenticator(store), jwtManager, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("unexpected body: %s", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPreflight(t *testing.T) {
	ts := setupServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/duesbook.v1.DuesService/GetDues", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Errorf("Authorization not allowed: %q", resp.Header.Get("Access-Control-Allow-Headers"))
	}
}

func TestRoutes_AuthThenLedger(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	authClient := apiconnect.NewAuthServiceClient(http.DefaultClient, ts.URL)
	duesClient := apiconnect.NewDuesServiceClient(http.DefaultClient, ts.URL)

	_, err := duesClient.GetDues(ctx, connect.NewRequest(&api.GetDuesRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated without token, got %v", err)
	}

	reg, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "frank@example.com", Name: "Frank", Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := connect.NewRequest(&api.GetDuesRequest{})
	req.Header().Set("Authorization", "Bearer "+reg.Msg.Token)
	resp, err := duesClient.GetDues(ctx, req)
	if err != nil {
		t.Fatalf("GetDues failed: %v", err)
	}
	if len(resp.Msg.Dues) != 0 || resp.Msg.Period == "" {
		t.Errorf("unexpected dues response: %+v", resp.Msg)
	}

	peopleReq := connect.NewRequest(&api.ListPeopleRequest{})
	peopleReq.Header().Set("Authorization", "Bearer "+reg.Msg.Token)
	people, err := authClient.ListPeople(ctx, peopleReq)
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(people.Msg.People) != 1 || people.Msg.People[0].Email != "frank@example.com" {
		t.Errorf("unexpected people: %+v", people.Msg.People)
	}
}
