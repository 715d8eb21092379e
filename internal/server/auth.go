package server

import (
	"errors"
	"net/http"
	"strings"

	"familyhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type loginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int32         `json:"expires_in"`
	Member      *types.Member `json:"member"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Cognito == nil {
		s.writeError(w, r, errors.New("login is not configured"))
		return
	}

	var input loginInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.deps.Cognito.InitiateAuth(r.Context(), &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": strings.ToLower(strings.TrimSpace(input.Email)),
			"PASSWORD": input.Password,
		},
	})
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.logger.WithError(err).Debug("identity provider rejected login")
		s.writeError(w, r, types.ErrUnauthenticated)
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		// challenge flows such as NEW_PASSWORD_REQUIRED are not supported
		s.writeError(w, r, types.ErrUnauthenticated)
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := resp.AuthenticationResult.ExpiresIn

	identity, err := s.deps.Auth.Verify(r.Context(), accessToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	member, err := s.deps.Members.MemberBySubject(r.Context(), identity.Subject, input.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			err = types.ErrUnauthenticated
		}
		s.writeError(w, r, err)
		return
	}
	if !member.IsActive {
		s.writeError(w, r, types.ErrUnauthenticated)
		return
	}
	if member.AuthSubject == nil {
		if err := s.deps.Members.LinkSubject(r.Context(), member.ID, identity.Subject); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	if s.cookie != nil {
		encrypted, err := s.cookie.Encode(s.config.CookieName, accessToken)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     s.config.CookieName,
			Value:    encrypted,
			HttpOnly: true,
			Secure:   !s.config.IsDevelopment(),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(expiresIn),
			Path:     "/",
		})
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		Member:      member,
	})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
	noContent(w)
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	member, err := s.deps.Members.Member(r.Context(), actor.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}
