package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	seedAdmins := func(t *testing.T, password string) *adminDirectoryStub {
		t.Helper()
		hash, err := HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		return &adminDirectoryStub{admins: map[string]AdminCredentials{
			"admin@example.com": {
				Admin:        AdminUser{ID: "admin-1", Email: "admin@example.com", DisplayName: "Admin"},
				PasswordHash: hash,
			},
		}}
	}

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()

		admins := seedAdmins(t, "correct horse")
		sessions := newSessionRepoStub()
		svc := NewAuthService(admins, sessions,
			func() string { return "session-id" },
			func() string { return "session-token" },
			func() time.Time { return now }, time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    " Admin@Example.COM ",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.Session.Token != "session-token" {
			t.Fatalf("expected issued token, got %q", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected expiry now+ttl, got %v", result.Session.ExpiresAt)
		}
		if result.Admin.ID != "admin-1" {
			t.Fatalf("expected admin identity, got %+v", result.Admin)
		}
		if len(sessions.deleteCalls) != 1 || !sessions.deleteCalls[0].Equal(now) {
			t.Fatalf("expected expired sessions pruned at now, got %v", sessions.deleteCalls)
		}
	})

	t.Run("rejects a wrong password with the credentials sentinel", func(t *testing.T) {
		t.Parallel()

		admins := seedAdmins(t, "correct horse")
		svc := NewAuthService(admins, newSessionRepoStub(), nil, nil, func() time.Time { return now }, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("hides whether the account exists", func(t *testing.T) {
		t.Parallel()

		admins := &adminDirectoryStub{}
		svc := NewAuthService(admins, newSessionRepoStub(), nil, nil, func() time.Time { return now }, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "unknown@example.com",
			Password: "whatever",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for unknown account, got %v", err)
		}
	})

	t.Run("rejects empty credentials before any lookup", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&adminDirectoryStub{}, newSessionRepoStub(), nil, nil, time.Now, time.Hour)
		_, err := svc.Authenticate(context.Background(), AuthenticateParams{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	admins := &adminDirectoryStub{admins: map[string]AdminCredentials{
		"admin@example.com": {Admin: AdminUser{ID: "admin-1", Email: "admin@example.com"}},
	}}

	newService := func(sessions *sessionRepoStub) *AuthService {
		return NewAuthService(admins, sessions, nil, nil, func() time.Time { return now }, time.Hour)
	}

	t.Run("resolves a live token to the admin principal", func(t *testing.T) {
		t.Parallel()

		sessions := newSessionRepoStub()
		sessions.sessions["token-1"] = Session{ID: "s1", AdminID: "admin-1", Token: "token-1", ExpiresAt: now.Add(time.Hour)}
		svc := newService(sessions)

		principal, err := svc.ValidateSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.AdminID != "admin-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		t.Parallel()

		sessions := newSessionRepoStub()
		sessions.sessions["token-1"] = Session{ID: "s1", AdminID: "admin-1", Token: "token-1", ExpiresAt: now.Add(-time.Second)}
		svc := newService(sessions)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		t.Parallel()

		revoked := now.Add(-time.Minute)
		sessions := newSessionRepoStub()
		sessions.sessions["token-1"] = Session{ID: "s1", AdminID: "admin-1", Token: "token-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}
		svc := newService(sessions)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects unknown and empty tokens", func(t *testing.T) {
		t.Parallel()

		svc := newService(newSessionRepoStub())
		if _, err := svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	admins := &adminDirectoryStub{}

	t.Run("marks the session revoked", func(t *testing.T) {
		t.Parallel()

		sessions := newSessionRepoStub()
		sessions.sessions["token-1"] = Session{ID: "s1", AdminID: "admin-1", Token: "token-1", ExpiresAt: now.Add(time.Hour)}
		svc := NewAuthService(admins, sessions, nil, nil, func() time.Time { return now }, time.Hour)

		if err := svc.RevokeSession(context.Background(), "token-1"); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		stored := sessions.sessions["token-1"]
		if stored.RevokedAt == nil || !stored.RevokedAt.Equal(now) {
			t.Fatalf("expected revocation timestamp, got %+v", stored)
		}
	})

	t.Run("treats an unknown token as unauthorized", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(admins, newSessionRepoStub(), nil, nil, func() time.Time { return now }, time.Hour)
		if err := svc.RevokeSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	t.Run("seeds the first admin on an empty directory", func(t *testing.T) {
		t.Parallel()

		admins := &adminDirectoryStub{}
		svc := NewAuthService(admins, newSessionRepoStub(), func() string { return "admin-1" }, nil, func() time.Time { return now }, time.Hour)

		if err := svc.EnsureBootstrapAdmin(context.Background(), "Boss@Example.com", "initial-password", "Boss"); err != nil {
			t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
		}
		if len(admins.created) != 1 {
			t.Fatalf("expected one admin created, got %d", len(admins.created))
		}
		created := admins.created[0]
		if created.Email != "boss@example.com" {
			t.Fatalf("expected normalized email, got %q", created.Email)
		}

		creds := admins.admins["boss@example.com"]
		if !VerifyPassword("initial-password", creds.PasswordHash) {
			t.Fatalf("expected stored hash to verify the bootstrap password")
		}
	})

	t.Run("does nothing when admins already exist", func(t *testing.T) {
		t.Parallel()

		admins := &adminDirectoryStub{admins: map[string]AdminCredentials{
			"existing@example.com": {Admin: AdminUser{ID: "admin-0", Email: "existing@example.com"}},
		}}
		svc := NewAuthService(admins, newSessionRepoStub(), nil, nil, func() time.Time { return now }, time.Hour)

		if err := svc.EnsureBootstrapAdmin(context.Background(), "boss@example.com", "pw", "Boss"); err != nil {
			t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
		}
		if len(admins.created) != 0 {
			t.Fatalf("expected no admin created, got %d", len(admins.created))
		}
	})

	t.Run("is a no-op without credentials", func(t *testing.T) {
		t.Parallel()

		admins := &adminDirectoryStub{countErr: errors.New("must not be called")}
		svc := NewAuthService(admins, newSessionRepoStub(), nil, nil, func() time.Time { return now }, time.Hour)

		if err := svc.EnsureBootstrapAdmin(context.Background(), "", "", ""); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})
}
