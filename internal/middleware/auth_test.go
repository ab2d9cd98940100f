package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"wakemeup/internal/token"
)

func authTestRouter(t *testing.T, sealer *token.Sealer, now func() time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	cookieAuth := &CookieAuth{Sealer: sealer, Now: now}
	r.GET("/protected", cookieAuth.RequireAuth(), func(c *gin.Context) {
		userID, _ := UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func sealToken(t *testing.T, sealer *token.Sealer, tok token.Token) string {
	t.Helper()
	sealed, err := sealer.Seal(tok.String())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return sealed
}

func authCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == token.CookieName {
			return c
		}
	}
	return nil
}

func TestRequireAuth_NoCookie(t *testing.T) {
	sealer, _ := token.NewSealer("secret")
	r := authTestRouter(t, sealer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if authCookie(w) != nil {
		t.Fatalf("expected no cookie mutation when cookie is absent")
	}

	var body map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"]["type"] != "NO_AUTH" {
		t.Fatalf("expected NO_AUTH, got %v", body["error"])
	}
	if body["error"]["req_uuid"] == "" {
		t.Fatalf("expected correlation id in error body")
	}
}

func TestRequireAuth_ValidTokenRefreshesCookie(t *testing.T) {
	sealer, _ := token.NewSealer("secret")
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := authTestRouter(t, sealer, func() time.Time { return clock })

	issued := token.Issue(7, clock.Add(-30*time.Minute))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: sealToken(t, sealer, issued)})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	refreshed := authCookie(w)
	if refreshed == nil {
		t.Fatalf("expected refreshed cookie")
	}
	value, err := sealer.Open(refreshed.Value)
	if err != nil {
		t.Fatalf("Open refreshed cookie: %v", err)
	}
	tok, err := token.Parse(value)
	if err != nil {
		t.Fatalf("Parse refreshed token: %v", err)
	}
	if tok.UserID != 7 {
		t.Fatalf("expected user 7, got %d", tok.UserID)
	}
	if tok.IssuedAt != clock.Unix() {
		t.Fatalf("expected sliding window refresh, issued_at=%d", tok.IssuedAt)
	}
	if !refreshed.HttpOnly || refreshed.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", refreshed)
	}
}

func TestRequireAuth_ExpiredTokenClearsCookie(t *testing.T) {
	sealer, _ := token.NewSealer("secret")
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := authTestRouter(t, sealer, func() time.Time { return clock })

	issued := token.Issue(7, clock.Add(-2*time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: sealToken(t, sealer, issued)})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	cleared := authCookie(w)
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected cookie cleared, got %+v", cleared)
	}
}

func TestRequireAuth_MalformedTokenClearsCookie(t *testing.T) {
	sealer, _ := token.NewSealer("secret")
	r := authTestRouter(t, sealer, nil)

	sealed, err := sealer.Seal("not-a-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: sealed})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if cleared := authCookie(w); cleared == nil {
		t.Fatalf("expected cookie cleared for malformed token")
	}
}

func TestRequireAuth_ForgedCookieTreatedAsAbsent(t *testing.T) {
	sealer, _ := token.NewSealer("secret")
	r := authTestRouter(t, sealer, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "forged-garbage"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	// Undecryptable is indistinguishable from absent: no cookie mutation.
	if authCookie(w) != nil {
		t.Fatalf("expected no cookie mutation for forged cookie")
	}
}
