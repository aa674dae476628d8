package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	errs "go_arena/internal/errors"
	"go_arena/internal/repository"
)

func TestSessionResolver(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sessions := repository.NewSessionRedisStorage(client, log)
	if err := mr.Set("sid-1", "alice"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	resolver := NewSessionResolver(sessions, log)

	r := httptest.NewRequest(http.MethodPost, "/games", nil)
	if _, err := resolver.PlayerID(r); !errors.Is(err, errs.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound without cookie, got %v", err)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "unknown"})
	if _, err := resolver.PlayerID(r); !errors.Is(err, errs.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown session, got %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/games", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})
	id, err := resolver.PlayerID(r)
	if err != nil || id != "alice" {
		t.Fatalf("expected alice, got %q (%v)", id, err)
	}
}

func TestHeaderResolver(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/games", nil)
	r.Header.Set(PlayerHeader, "bob")
	id, err := HeaderResolver{}.PlayerID(r)
	if err != nil || id != "bob" {
		t.Fatalf("expected bob, got %q (%v)", id, err)
	}
}
