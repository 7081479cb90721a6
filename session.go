package identity

import (
	"fmt"
	"strconv"
	"time"
)

// SessionUser is the user shape exposed to the rest of the application
type SessionUser struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
}

// Session is the read-only projection of a reconciled token
type Session struct {
	User    *SessionUser   `json:"user,omitempty"`
	Expires *time.Time     `json:"expires,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func (s *Session) GetUserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return strconv.FormatInt(s.User.ID, 10)
}

func (s *Session) IsEmailVerified() bool {
	return s != nil && s.User != nil && s.User.EmailVerified != nil
}

// String omits the name so sessions can be logged
func (s Session) String() string {
	if s.User == nil {
		return "user=<nil>"
	}
	verified := "<nil>"
	if s.User.EmailVerified != nil {
		verified = s.User.EmailVerified.Format(time.RFC3339)
	}
	return fmt.Sprintf("user=%d email=%s verified=%s", s.User.ID, s.User.Email, verified)
}

// ProjectSession maps tok onto a copy of prior. Tokens without an email
// leave prior untouched so a transient reconcile gap does not clear a
// valid session.
func ProjectSession(tok *Token, prior *Session) (*Session, error) {
	if tok == nil || tok.Email == "" {
		return prior, nil
	}

	id, err := tok.UserID()
	if err != nil {
		return nil, err
	}

	out := &Session{}
	if prior != nil {
		out.Expires = cloneTime(prior.Expires)
		if len(prior.Data) > 0 {
			out.Data = make(map[string]any, len(prior.Data))
			for k, v := range prior.Data {
				out.Data[k] = v
			}
		}
	}

	out.User = &SessionUser{
		ID:            id,
		Name:          tok.Name,
		Email:         tok.Email,
		EmailVerified: cloneTime(tok.EmailVerified),
	}

	return out, nil
}
