package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/guildpulse/dashboard/internal/domain"
)

const (
	discordAuthURL  = "https://discord.com/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/oauth2/token"
	discordAPIBase  = "https://discord.com/api/v10"
)

// discordOAuthClient handles the Discord OAuth code exchange and profile fetch.
type discordOAuthClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*domain.Identity, error)
}

// discordOAuthHTTPClient is the production implementation using Discord HTTP APIs.
type discordOAuthHTTPClient struct {
	conf *oauth2.Config
}

func newDiscordOAuthClient(clientID, clientSecret, redirectURI string) *discordOAuthHTTPClient {
	return &discordOAuthHTTPClient{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  discordAuthURL,
				TokenURL: discordTokenURL,
			},
		},
	}
}

func (c *discordOAuthHTTPClient) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// ExchangeCode trades the authorization code for a token, then fetches the
// user profile and guild list needed to build the session identity. Any
// failure aborts the whole exchange; a partial identity is never returned.
func (c *discordOAuthHTTPClient) ExchangeCode(ctx context.Context, code string) (*domain.Identity, error) {
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	httpc := c.conf.Client(ctx, token)

	user, err := fetchDiscordUser(ctx, httpc)
	if err != nil {
		return nil, fmt.Errorf("user info fetch failed: %w", err)
	}

	guilds, err := fetchDiscordGuilds(ctx, httpc)
	if err != nil {
		return nil, fmt.Errorf("guild list fetch failed: %w", err)
	}

	username := user.GlobalName
	if username == "" {
		username = user.Username
	}

	return &domain.Identity{
		UserID:   user.ID,
		Username: username,
		Avatar:   user.Avatar,
		Guilds:   guilds,
	}, nil
}

type discordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

func fetchDiscordUser(ctx context.Context, httpc *http.Client) (*discordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordAPIBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord user API returned status %d", resp.StatusCode)
	}

	var user discordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("no user data returned")
	}

	return &user, nil
}

func fetchDiscordGuilds(ctx context.Context, httpc *http.Client) ([]domain.GuildMembership, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordAPIBase+"/users/@me/guilds", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create guilds request: %w", err)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute guilds request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord guilds API returned status %d", resp.StatusCode)
	}

	var guilds []domain.GuildMembership
	if err := json.NewDecoder(resp.Body).Decode(&guilds); err != nil {
		return nil, fmt.Errorf("failed to decode guilds response: %w", err)
	}

	return guilds, nil
}
