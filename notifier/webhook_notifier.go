package notifier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"reelspin/events"
	"reelspin/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// EmbedPoster delivers one embed to a channel
type EmbedPoster interface {
	PostEmbed(embed *discordgo.MessageEmbed) error
}

// WebhookPoster posts embeds through a Discord webhook
type WebhookPoster struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

// NewWebhookPoster parses a webhook URL of the form .../api/webhooks/{id}/{token}
func NewWebhookPoster(webhookURL string) (*WebhookPoster, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution needs no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &WebhookPoster{session: session, webhookID: id, token: token}, nil
}

// PostEmbed executes the webhook with a single embed
func (p *WebhookPoster) PostEmbed(embed *discordgo.MessageEmbed) error {
	_, err := p.session.WebhookExecute(p.webhookID, p.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook URL: no webhook id and token in %q", u.Path)
}

// BigWinNotifier announces wins at or above a threshold
type BigWinNotifier struct {
	poster    EmbedPoster
	threshold int64
}

// NewBigWinNotifier creates a notifier. Wins below threshold are not announced.
func NewBigWinNotifier(poster EmbedPoster, threshold int64) *BigWinNotifier {
	return &BigWinNotifier{poster: poster, threshold: threshold}
}

// Subscribe announces big wins from settled spins on bus
func (n *BigWinNotifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeSpinSettled, func(ctx context.Context, e events.Event) {
		settled, ok := e.(events.SpinSettledEvent)
		if !ok {
			return
		}
		if err := n.Announce(settled.Result); err != nil {
			log.WithFields(log.Fields{
				"accountID": settled.Result.AccountID,
				"winAmount": settled.Result.WinAmount,
				"error":     err,
			}).Warn("Failed to announce big win")
		}
	})
}

// Announce posts the result if it qualifies. Returns nil for results below the threshold.
func (n *BigWinNotifier) Announce(result models.SpinResult) error {
	if !result.IsWin || result.WinAmount < n.threshold {
		return nil
	}
	return n.poster.PostEmbed(BuildWinEmbed(result, TierFor(result.WinAmount, n.threshold)))
}

// BuildWinEmbed renders a win announcement
func BuildWinEmbed(result models.SpinResult, tier WinTier) *discordgo.MessageEmbed {
	reels := strings.Join([]string{string(result.Symbols[0]), string(result.Symbols[1]), string(result.Symbols[2])}, " ")

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎰 %s!", tier),
		Description: reels,
		Color:       tier.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Player",
				Value:  result.AccountID,
				Inline: true,
			},
			{
				Name:   "Bet",
				Value:  FormatAmount(result.BetAmount),
				Inline: true,
			},
			{
				Name:   "Payout",
				Value:  FormatAmount(result.WinAmount),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Spin #%d", result.SpinIndex),
		},
	}
}
