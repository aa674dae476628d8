package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	errs "go_arena/internal/errors"
)

const (
	SessionCookie = "sessionID"
	PlayerHeader  = "X-Player-ID"
)

// PlayerResolver tells who sent a request. The id is recorded on moves for
// audit; it does not gate which color may play.
type PlayerResolver interface {
	PlayerID(r *http.Request) (string, error)
}

type SessionStorage interface {
	GetUserIdBySession(ctx context.Context, sessionID string) (string, bool)
}

// SessionResolver reads the sessionID cookie and looks the player up in the
// session storage.
type SessionResolver struct {
	sessions SessionStorage
	log      *zap.SugaredLogger
}

func NewSessionResolver(sessions SessionStorage, log *zap.SugaredLogger) *SessionResolver {
	return &SessionResolver{
		sessions: sessions,
		log:      log,
	}
}

func (a *SessionResolver) PlayerID(r *http.Request) (string, error) {
	sessionCookie, err := r.Cookie(SessionCookie)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			a.log.Warn("PlayerID: no sessionID cookie")
		}
		return "", errs.ErrSessionNotFound
	}

	userID, ok := a.sessions.GetUserIdBySession(r.Context(), sessionCookie.Value)
	if !ok {
		a.log.Warn("PlayerID: session not found or expired")
		return "", errs.ErrSessionNotFound
	}
	return userID, nil
}

// HeaderResolver trusts the X-Player-ID header. Used when running without
// Redis.
type HeaderResolver struct{}

func (HeaderResolver) PlayerID(r *http.Request) (string, error) {
	return r.Header.Get(PlayerHeader), nil
}
