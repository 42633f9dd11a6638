package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the signed session token.
const SessionCookie = "__session"

var ErrNoSecret = errors.New("session secret is required")

type User struct {
	ID    string
	Name  string
	Email string
}

// Provider resolves the signed-in user for a request.
type Provider interface {
	CurrentUser(r *http.Request) (*User, bool)
}

// SessionProvider verifies HS256 session tokens stored in SessionCookie.
type SessionProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func NewSessionProvider(secret string) (*SessionProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	return &SessionProvider{
		secret: []byte(secret),
		issuer: "jobboard",
		now:    time.Now,
	}, nil
}

// Issue signs a session token for user valid for ttl.
func (p *SessionProvider) Issue(user User, ttl time.Duration) (string, error) {
	if user.ID == "" {
		return "", errors.New("user id is required")
	}
	now := p.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  user.Name,
		Email: user.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *SessionProvider) Parse(tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid session claims")
	}
	return &User{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

func (p *SessionProvider) CurrentUser(r *http.Request) (*User, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	user, err := p.Parse(cookie.Value)
	if err != nil {
		return nil, false
	}
	return user, true
}

// SignedOut treats every request as anonymous. Used when no session secret
// is configured.
type SignedOut struct{}

func (SignedOut) CurrentUser(r *http.Request) (*User, bool) {
	return nil, false
}

var (
	_ Provider = (*SessionProvider)(nil)
	_ Provider = SignedOut{}
)
