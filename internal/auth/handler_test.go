package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTSecret_PicksUpLateEnvironment(t *testing.T) {
	// The secret must be read at use time: a JWT_SECRET that lands in the
	// environment after package init (e.g. via a .env loaded in main) still
	// has to win over the built-in fallback.
	t.Setenv("JWT_SECRET", "set-after-init")

	if got := string(JWTSecret()); got != "set-after-init" {
		t.Errorf("JWTSecret() = %q, want the environment value", got)
	}
}

func TestJWTSecret_Fallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if got := string(JWTSecret()); got == "" {
		t.Error("JWTSecret() must fall back to a non-empty key")
	}
}

func TestGenerateToken_SignedWithCurrentSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-key")

	signed, err := generateToken(42)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	token, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return JWTSecret(), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify with current secret: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if uid, _ := claims["user_id"].(float64); int64(uid) != 42 {
		t.Errorf("user_id claim = %v, want 42", claims["user_id"])
	}
}
