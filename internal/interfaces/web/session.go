package web

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	sessionName = "classbooker_session"
	sessionTTL  = 12 * time.Hour
)

// session is what the cookie carries. Issued lets the server expire a
// session even when the browser keeps the cookie past MaxAge.
type session struct {
	UserID string
	Issued int64
}

type SessionManager struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
	now func() time.Time
}

// NewSessionManager signs cookies with hashKey and, when blockKey is set,
// encrypts them too.
func NewSessionManager(hashKey, blockKey []byte) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &SessionManager{sc: sc, ttl: sessionTTL, now: time.Now}
}

func (s *SessionManager) SetUserID(w http.ResponseWriter, userID string) error {
	encoded, err := s.sc.Encode(sessionName, session{UserID: userID, Issued: s.now().Unix()})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: encoded, Path: "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: sessionName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionManager) GetUserID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	var sess session
	if err := s.sc.Decode(sessionName, c.Value, &sess); err != nil {
		return "", false
	}
	if sess.UserID == "" || s.now().Sub(time.Unix(sess.Issued, 0)) > s.ttl {
		return "", false
	}
	return sess.UserID, true
}
