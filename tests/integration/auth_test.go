package integration

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Run("register_returns_token_and_seeded_portfolio", func(t *testing.T) {
		app := setupApp(t, nil)

		token, userID := app.registerUser(t, "alice", "password123")
		if token == "" || userID == "" {
			t.Fatal("expected a token and user id")
		}

		rec := app.request("GET", "/api/v1/holdings?list=portfolio", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("list holdings failed: %d %s", rec.Code, rec.Body.String())
		}
		holdings := parseJSON(t, rec)["holdings"].([]interface{})
		if len(holdings) != 2 {
			t.Errorf("expected 2 seeded cash holdings, got %d", len(holdings))
		}
	})

	t.Run("register_rejects_short_password", func(t *testing.T) {
		app := setupApp(t, nil)

		rec := app.request("POST", "/api/v1/auth/register", `{"username":"bob","password":"short"}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for short password, got %d", rec.Code)
		}
	})

	t.Run("register_rejects_duplicate_username", func(t *testing.T) {
		app := setupApp(t, nil)

		app.registerUser(t, "carol", "password123")
		rec := app.request("POST", "/api/v1/auth/register", `{"username":"carol","password":"password123"}`, "")
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409 for duplicate username, got %d", rec.Code)
		}
	})

	t.Run("login_with_valid_credentials", func(t *testing.T) {
		app := setupApp(t, nil)

		_, userID := app.registerUser(t, "dave", "password123")
		token := app.loginUser(t, "dave", "password123")

		rec := app.request("GET", "/api/v1/profile", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
		}
		profile := parseJSON(t, rec)
		if profile["id"].(string) != userID {
			t.Errorf("expected profile for %s, got %v", userID, profile["id"])
		}
		if profile["last_sync_at"] != nil {
			t.Errorf("expected no last sync before first refresh, got %v", profile["last_sync_at"])
		}
	})

	t.Run("login_with_wrong_password", func(t *testing.T) {
		app := setupApp(t, nil)

		app.registerUser(t, "erin", "password123")
		rec := app.request("POST", "/api/v1/auth/login", `{"username":"erin","password":"wrongpassword"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for wrong password, got %d", rec.Code)
		}
	})

	t.Run("protected_route_requires_token", func(t *testing.T) {
		app := setupApp(t, nil)

		rec := app.request("GET", "/api/v1/holdings", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %d", rec.Code)
		}

		rec = app.request("GET", "/api/v1/holdings", "", "not-a-real-token")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for garbage token, got %d", rec.Code)
		}
	})
}
