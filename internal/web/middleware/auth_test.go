package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecretAuthenticator(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		code   string
		want   bool
	}{
		{"correct code", "letmein", "letmein", true},
		{"wrong code", "letmein", "guess", false},
		{"empty code", "letmein", "", false},
		{"empty secret rejects everything", "", "letmein", false},
		{"both empty still rejects", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewSecretAuthenticator(tc.secret)
			if got := a.Authenticate(tc.code); got != tc.want {
				t.Errorf("Authenticate(%q) = %v, want %v", tc.code, got, tc.want)
			}
		})
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, session)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		req.AddCookie(cookie)
	}

	got := sm.GetSessionFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Errorf("expected session %q back from cookie, got %+v", session.ID, got)
	}
}

func TestSessionManager_TamperedCookieRejected(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "face_attendance_admin",
		Value: session.ID + ".forged-signature",
	})

	if got := sm.GetSessionFromRequest(req); got != nil {
		t.Error("tampered cookie must not yield a session")
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	got := sm.GetSessionFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Errorf("expected session from bearer token, got %+v", got)
	}
}

func TestRequireAuth(t *testing.T) {
	sm := NewSessionManager("test-secret")

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionFromContext(r.Context()) == nil {
			t.Error("session missing from context inside protected handler")
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("valid session", func(t *testing.T) {
		session, err := sm.CreateSession()
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", recorder.Code)
		}
	})

	t.Run("deleted session", func(t *testing.T) {
		session, err := sm.CreateSession()
		if err != nil {
			t.Fatal(err)
		}
		sm.DeleteSession(session.ID)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})
}
