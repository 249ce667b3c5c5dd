package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"auth-blog/internal/domain"
)

// OIDCConfig holds the configuration for a generic OpenID Connect provider.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OIDC identifies users through any OpenID Connect issuer.
type OIDC struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

type oidcClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// NewOIDC performs discovery against cfg.Issuer.
func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDC, error) {
	p, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("new oidc provider: %w", err)
	}

	return &OIDC{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			Endpoint:     p.Endpoint(),
		},
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (o *OIDC) Name() string {
	return "oidc"
}

func (o *OIDC) LoginURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

func (o *OIDC) Exchange(ctx context.Context, code string) (domain.Identity, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.Identity{}, err
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return domain.Identity{}, errors.New("token response has no id_token")
	}
	idTok, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("verify id token: %w", err)
	}

	var claims oidcClaims
	if err := idTok.Claims(&claims); err != nil {
		return domain.Identity{}, fmt.Errorf("read claims: %w", err)
	}

	return domain.Identity{
		Subject: claims.Sub,
		Name:    nameOrDefault(claims.Name, claims.PreferredUsername),
		Email:   claims.Email,
	}, nil
}
