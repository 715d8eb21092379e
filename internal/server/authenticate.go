package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"familyhub/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	Subject string
	Email   string
}

// Authenticator verifies a raw access token.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTAuthenticator verifies tokens against a remote key set, or against a
// shared HS256 secret when no key set is configured.
type JWTAuthenticator struct {
	cache   *jwk.Cache
	jwksURL string
	secret  []byte
}

func NewJWKSAuthenticator(cache *jwk.Cache, jwksURL string) *JWTAuthenticator {
	return &JWTAuthenticator{cache: cache, jwksURL: jwksURL}
}

func NewSecretAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Verify(ctx context.Context, raw string) (*Identity, error) {
	var opt jwt.ParseOption
	if a.cache != nil {
		set, err := a.cache.Lookup(ctx, a.jwksURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		opt = jwt.WithKeySet(set)
	} else {
		opt = jwt.WithKey(jwa.HS256(), a.secret)
	}

	token, err := jwt.Parse([]byte(raw), opt, jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnauthenticated, err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", types.ErrUnauthenticated)
	}

	identity := &Identity{Subject: subject}
	// email is optional; Cognito access tokens do not carry it
	_ = token.Get("email", &identity.Email)

	return identity, nil
}

type actorHandler func(w http.ResponseWriter, r *http.Request, actor *types.Actor)

// withActor authenticates the request and hands the actor to h explicitly.
func (s *Service) withActor(h actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := s.authenticate(r)
		if err != nil {
			if errors.Is(err, types.ErrUnauthenticated) {
				s.logger.WithError(err).WithField("path", r.URL.Path).Debug("request not authenticated")
				s.writeError(w, r, types.ErrUnauthenticated)
				return
			}
			s.writeError(w, r, err)
			return
		}

		h(w, r, actor)
	}
}

func (s *Service) authenticate(r *http.Request) (*types.Actor, error) {
	if s.deps.Auth == nil {
		return nil, fmt.Errorf("%w: no authenticator configured", types.ErrUnauthenticated)
	}

	raw, err := s.accessToken(r)
	if err != nil {
		return nil, err
	}

	identity, err := s.deps.Auth.Verify(r.Context(), raw)
	if err != nil {
		return nil, err
	}

	member, err := s.deps.Members.MemberBySubject(r.Context(), identity.Subject, identity.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: no member for subject %s", types.ErrUnauthenticated, identity.Subject)
		}
		return nil, err
	}

	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", types.ErrUnauthenticated, member.ID)
	}

	// first sign-in matched by email, remember the subject
	if member.AuthSubject == nil {
		if err := s.deps.Members.LinkSubject(r.Context(), member.ID, identity.Subject); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"member_id": member.ID,
				"subject":   identity.Subject,
			}).Warn("failed to link auth subject")
		}
	}

	return &types.Actor{
		UserID: member.ID,
		Email:  member.Email,
		Role:   member.Role,
	}, nil
}

// accessToken prefers a bearer token and falls back to the session cookie.
func (s *Service) accessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", fmt.Errorf("%w: malformed authorization header", types.ErrUnauthenticated)
		}
		return strings.TrimSpace(token), nil
	}

	if s.cookie == nil {
		return "", types.ErrUnauthenticated
	}

	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", types.ErrUnauthenticated
	}

	var token string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &token); err != nil {
		return "", fmt.Errorf("%w: failed to decode session cookie: %v", types.ErrUnauthenticated, err)
	}

	return token, nil
}
