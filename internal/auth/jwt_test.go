// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/tracepoint/internal/config"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "valid secret", secret: testSecret},
		{name: "empty secret", secret: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			manager, err := NewJWTManager(&config.SecurityConfig{JWTSecret: tt.secret})
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if manager == nil {
				t.Error("NewJWTManager() returned nil manager")
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	token, err := m.GenerateToken(7, 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TeamID != 7 || claims.UserID != 42 {
		t.Errorf("claims = team %d user %d, want team 7 user 42", claims.TeamID, claims.UserID)
	}
	if claims.ExpiresAt == nil {
		t.Error("ExpiresAt not set for ttl > 0")
	}
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	token, err := m.GenerateToken(1, 0, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", claims.ExpiresAt)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "another_secret_that_is_long_enough_to_use"})
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := other.GenerateToken(1, 1, time.Hour)

	past := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		TeamID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expired, _ := past.SignedString([]byte(testSecret))

	noTeam, _ := m.GenerateToken(0, 1, time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TeamID: 1})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"missing team", noTeam},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Errorf("ValidateToken(%s) expected error", tt.name)
			}
		})
	}

	if _, err := m.ValidateToken(noTeam); !errors.Is(err, ErrMissingTeam) {
		t.Errorf("missing team error = %v, want ErrMissingTeam", err)
	}
}
