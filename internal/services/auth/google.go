package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider runs the OAuth code flow against Google.
type GoogleProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleUser, error)
}

type OAuthGoogle struct {
	cfg *oauth2.Config
}

func NewOAuthGoogle(clientID, secret, redirect string) *OAuthGoogle {
	return &OAuthGoogle{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		RedirectURL:  redirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

func (g *OAuthGoogle) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *OAuthGoogle) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.cfg.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &gu, nil
}

func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

// GoogleAuthURL returns the consent page URL for state.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", apperr.Unavailable("Login com Google não está configurado")
	}
	return s.google.AuthURL(state), nil
}

// GoogleLogin exchanges code and signs in the matching user, creating a
// client account on first login.
func (s *Service) GoogleLogin(ctx context.Context, code string) (*models.User, string, error) {
	if s.google == nil {
		return nil, "", apperr.Unavailable("Login com Google não está configurado")
	}

	gu, err := s.google.Exchange(ctx, code)
	if err != nil {
		log.Warn().Err(err).Msg("google exchange failed")
		return nil, "", apperr.Unauthorized("Falha na autenticação com Google")
	}
	email := services.NormalizeEmail(gu.Email)
	if email == "" {
		return nil, "", apperr.BadRequest("Email não retornado pelo Google")
	}

	u, err := s.findGoogleUser(ctx, gu.ID, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u, err = s.createGoogleUser(ctx, gu, email)
		if err != nil {
			return nil, "", err
		}
	case err != nil:
		return nil, "", services.StoreError(err, services.Messages{})
	default:
		if u.GoogleID == "" && gu.ID != "" {
			u.GoogleID = gu.ID
			if u.Avatar == "" {
				u.Avatar = gu.Picture
			}
			if err := s.users.SaveUser(ctx, u); err != nil {
				return nil, "", services.StoreError(err, services.Messages{})
			}
		}
	}

	if !u.IsActive {
		return nil, "", apperr.Unauthorized("Conta desativada. Reative sua conta para continuar")
	}
	tok, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *Service) findGoogleUser(ctx context.Context, googleID, email string) (*models.User, error) {
	if googleID != "" {
		u, err := s.users.GetUserByGoogleID(ctx, googleID)
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return u, err
		}
	}
	return s.users.GetUserByEmail(ctx, email)
}

func (s *Service) createGoogleUser(ctx context.Context, gu *GoogleUser, email string) (*models.User, error) {
	// the account gets an unusable random password
	raw, err := utils.RandomState()
	if err != nil {
		return nil, apperr.Internal("Erro ao criar conta", err)
	}
	hash, err := utils.HashPassword(raw)
	if err != nil {
		return nil, apperr.Internal("Erro ao criar conta", err)
	}

	name := strings.TrimSpace(gu.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleClient,
		IsActive: true,
		GoogleID: gu.ID,
		Avatar:   gu.Picture,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, services.StoreError(err, services.Messages{Duplicate: msgEmailTaken})
	}
	log.Info().Str("user_id", u.ID.String()).Msg("user registered via google")
	return u, nil
}
