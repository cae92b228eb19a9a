package transfer

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupTestApp(t *testing.T) (*fiber.App, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	engine := NewEngine(store, nil, nil, testCurrency)
	handler := NewHandler(engine, false)

	app := fiber.New()
	app.Post("/transfers", handler.Create)
	return app, store
}

func postTransfer(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/transfers", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return resp.StatusCode, payload
}

func TestTransferEndpointSuccess(t *testing.T) {
	app, store := setupTestApp(t)
	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	status, payload := postTransfer(t, app,
		`{"fromUserId":"alice","toUserId":"bob","amount":200,"idempotencyKey":"k1"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, payload)
	}
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", payload)
	}
	if payload["transferId"] == "" {
		t.Fatal("expected a transfer id")
	}
}

func TestTransferEndpointReplayReturnsSameID(t *testing.T) {
	app, store := setupTestApp(t)
	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	body := `{"fromUserId":"alice","toUserId":"bob","amount":200,"idempotencyKey":"k1"}`
	_, first := postTransfer(t, app, body)
	status, second := postTransfer(t, app, body)

	if status != fiber.StatusOK {
		t.Fatalf("replay must be a 2xx, got %d", status)
	}
	if second["transferId"] != first["transferId"] {
		t.Fatalf("replay returned different id: %v vs %v", second["transferId"], first["transferId"])
	}
	if got := WalletBalance(store, "alice", testCurrency); got != 300 {
		t.Fatalf("replay moved money, sender balance %d", got)
	}
}

func TestTransferEndpointFailureCodes(t *testing.T) {
	app, store := setupTestApp(t)
	SeedWallet(store, "alice", testCurrency, 50)
	SeedWallet(store, "bob", testCurrency, 0)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			"same user",
			`{"fromUserId":"alice","toUserId":"alice","amount":10,"idempotencyKey":"k"}`,
			fiber.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"missing fields",
			`{"fromUserId":"alice","amount":10}`,
			fiber.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"insufficient funds",
			`{"fromUserId":"alice","toUserId":"bob","amount":200,"idempotencyKey":"k2"}`,
			fiber.StatusBadRequest, "INSUFFICIENT_FUNDS",
		},
		{
			"unknown sender",
			`{"fromUserId":"ghost","toUserId":"bob","amount":10,"idempotencyKey":"k3"}`,
			fiber.StatusBadRequest, "WALLET_NOT_FOUND",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := postTransfer(t, app, tc.body)
			if status != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %v", tc.wantStatus, status, payload)
			}
			if payload["success"] != false {
				t.Fatalf("expected success=false, got %v", payload)
			}
			if payload["code"] != tc.wantCode {
				t.Fatalf("expected code %s, got %v", tc.wantCode, payload["code"])
			}
		})
	}
}
