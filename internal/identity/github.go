package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"auth-blog/internal/domain"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubConfig configures the GitHub OAuth app.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// APIURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	APIURL   string
	Endpoint *oauth2.Endpoint
}

// GitHub identifies users through a GitHub OAuth app and the /user REST endpoint.
type GitHub struct {
	cfg    *oauth2.Config
	apiURL string
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewGitHub(cfg GitHubConfig) *GitHub {
	endpoint := endpoints.GitHub
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	api := strings.TrimRight(cfg.APIURL, "/")
	if api == "" {
		api = defaultGitHubAPI
	}

	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     endpoint,
		},
		apiURL: api,
	}
}

func (g *GitHub) Name() string {
	return "github"
}

func (g *GitHub) LoginURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

func (g *GitHub) Exchange(ctx context.Context, code string) (domain.Identity, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/user", nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, fmt.Errorf("fetch user: unexpected status %d", resp.StatusCode)
	}

	var usr githubUser
	if err := json.NewDecoder(resp.Body).Decode(&usr); err != nil {
		return domain.Identity{}, fmt.Errorf("decode user: %w", err)
	}
	if usr.ID == 0 {
		return domain.Identity{}, fmt.Errorf("github user has no id")
	}

	return domain.Identity{
		Subject: strconv.FormatInt(usr.ID, 10),
		Name:    nameOrDefault(usr.Name, usr.Login),
		Email:   usr.Email,
	}, nil
}

// nameOrDefault returns name if it's not empty; otherwise, it returns def
func nameOrDefault(name, def string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return def
}
