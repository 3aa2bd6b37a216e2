package jwt

import (
	"testing"
	"time"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 8 * time.Hour,
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken(42, "Administrador", []string{"editar_sabana", "cargar_pdf"})
	if err != nil {
		t.Fatalf("GenerateToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	id, err := claims.InstructorID()
	if err != nil {
		t.Fatalf("InstructorID 失败: %v", err)
	}
	if id != 42 {
		t.Errorf("期望 InstructorID=42，实际=%d", id)
	}
	if claims.Rol != "Administrador" {
		t.Errorf("期望 Rol=Administrador，实际=%s", claims.Rol)
	}
	if len(claims.Permisos) != 2 || claims.Permisos[0] != "editar_sabana" {
		t.Errorf("权限列表不符: %v", claims.Permisos)
	}
	if claims.Issuer != "nodorap" {
		t.Errorf("期望 Issuer=nodorap，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 7*time.Hour || ttl > 9*time.Hour {
		t.Errorf("TTL 期望约 8h，实际=%v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := m1.GenerateToken(1, "Instructor", nil)
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: -time.Minute,
	})

	token, _ := m.GenerateToken(1, "Instructor", nil)
	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestClaims_InstructorID_Invalid(t *testing.T) {
	c := &Claims{}
	c.Subject = "abc"
	if _, err := c.InstructorID(); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
