package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

const (
	oauthStateCookie = "oauth_state"
	oauthNextCookie  = "oauth_next"
)

func (h *AuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

// GoogleStart stores a random state and the post-login path in short lived
// cookies, then sends the browser to the consent page.
func (h *AuthHandler) GoogleStart(c *fiber.Ctx) error {
	st, err := utils.RandomState()
	if err != nil {
		return apperr.Internal("Erro interno do servidor", err)
	}
	authURL, err := h.Auth.GoogleAuthURL(st)
	if err != nil {
		return err
	}

	h.tempCookie(c, oauthStateCookie, st, 10*60)
	h.tempCookie(c, oauthNextCookie, safeNext(c.Query("next", "/")), 10*60)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return apperr.BadRequest("Parâmetros code e state são obrigatórios")
	}
	if st := c.Cookies(oauthStateCookie); st == "" || st != state {
		return apperr.BadRequest("State inválido")
	}
	next := safeNext(c.Cookies(oauthNextCookie))

	h.tempCookie(c, oauthStateCookie, "", -1)
	h.tempCookie(c, oauthNextCookie, "", -1)

	_, token, err := h.Auth.GoogleLogin(c.UserContext(), code)
	if err != nil {
		msg := "Falha na autenticação com Google"
		if ae, ok := apperr.As(err); ok {
			msg = ae.Message
		}
		log.Warn().Err(err).Msg("google login refused")
		return c.Redirect(h.FrontendBaseURL+"/login?err="+url.QueryEscape(msg), http.StatusTemporaryRedirect)
	}

	h.setTokenCookie(c, token)
	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}

// safeNext keeps redirects on the frontend origin.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
