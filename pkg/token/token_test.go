package token

import (
	"testing"
	"time"

	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
)

func TestSignAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Minute)

	signed, err := manager.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	userID, err := manager.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("got subject %q, want user-123", userID)
	}
}

func TestVerifyRejections(t *testing.T) {
	manager := NewManager("test-secret", time.Minute)

	expired := NewManager("test-secret", -time.Minute)
	expiredToken, err := expired.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	otherSecret := NewManager("other-secret", time.Minute)
	foreignToken, err := otherSecret.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"expired", expiredToken},
		{"wrong secret", foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			if err == nil {
				t.Fatal("expected verification to fail")
			}
			appErr := apperrors.GetAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
				t.Errorf("every failure must be the same UNAUTHORIZED error, got %v", err)
			}
		})
	}
}
