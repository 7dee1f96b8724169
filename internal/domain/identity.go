package domain

import (
	"fmt"
	"math/big"
)

// manageGuildBit is Discord's MANAGE_GUILD permission flag.
var manageGuildBit = big.NewInt(0x20)

// GuildMembership is one entry of the user's Discord guild list, as returned
// by the provider. Permissions arrive as a decimal string because Discord
// bitmasks can exceed 64 bits; the raw string is kept and only parsed at
// check time.
type GuildMembership struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// CanManage reports whether the membership carries the MANAGE_GUILD bit.
// The bitmask is tested with math/big: a float-backed integer would silently
// corrupt high bits on values beyond 2^53, and Discord already issues
// permissions past the 64-bit boundary.
func (m GuildMembership) CanManage() bool {
	perms, ok := new(big.Int).SetString(m.Permissions, 10)
	if !ok {
		return false
	}
	return new(big.Int).And(perms, manageGuildBit).Sign() != 0
}

// IconURL returns the CDN URL for the guild icon, or "" if the guild has none.
func (m GuildMembership) IconURL() string {
	if m.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/icons/%s/%s.png", m.ID, m.Icon)
}

// Identity is the authenticated user's provider profile, built once on a
// successful OAuth callback and held in the session store for the session
// lifetime. It is never mutated; re-authentication replaces it wholesale.
type Identity struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Avatar   string            `json:"avatar,omitempty"`
	Guilds   []GuildMembership `json:"guilds"`
}

// AvatarURL returns the CDN URL for the user avatar, or "" if unset.
func (i *Identity) AvatarURL() string {
	if i.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", i.UserID, i.Avatar)
}

// ManageableGuilds returns, in membership order, the guilds the user can
// administer (MANAGE_GUILD bit set).
func (i *Identity) ManageableGuilds() []GuildMembership {
	var out []GuildMembership
	for _, g := range i.Guilds {
		if g.CanManage() {
			out = append(out, g)
		}
	}
	return out
}

// IsMember reports whether the user belongs to the given guild at all.
// This is deliberately looser than ManageableGuilds: guild-scoped pages are
// reachable by plain members, only the selector filters on the manage bit.
func (i *Identity) IsMember(guildID string) bool {
	for _, g := range i.Guilds {
		if g.ID == guildID {
			return true
		}
	}
	return false
}

// GuildSummary is a per-request projection for the guild selector. It is
// derived fresh on every request from the current identity and the upstream
// bot guild list; it is never persisted or cached.
type GuildSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IconURL    string `json:"icon_url,omitempty"`
	BotPresent bool   `json:"bot_present"`
}

// BuildGuildSummaries projects memberships onto selector entries, marking
// each one present when its ID appears in the bot's guild set. A nil set
// (upstream unavailable) yields BotPresent=false for every entry.
func BuildGuildSummaries(memberships []GuildMembership, present map[string]struct{}) []GuildSummary {
	summaries := make([]GuildSummary, 0, len(memberships))
	for _, m := range memberships {
		_, ok := present[m.ID]
		summaries = append(summaries, GuildSummary{
			ID:         m.ID,
			Name:       m.Name,
			IconURL:    m.IconURL(),
			BotPresent: ok,
		})
	}
	return summaries
}
