package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/service"
)

// Platform delivers service notices and sweep warnings through Discord.
// Unconfigured channels are skipped.
type Platform struct {
	session Session
	cfg     config.DiscordConfig
}

var (
	_ service.Notifier       = (*Platform)(nil)
	_ service.Warner         = (*Platform)(nil)
	_ service.ChannelHistory = (*Platform)(nil)
)

// NewPlatform wraps a session.
func NewPlatform(session Session, cfg config.DiscordConfig) *Platform {
	return &Platform{session: session, cfg: cfg}
}

func (p *Platform) target(t service.NoticeTarget) string {
	switch t {
	case service.TargetLogs:
		return p.cfg.LogsChannelID
	case service.TargetReviews:
		return p.cfg.ReviewsChannelID
	}
	return ""
}

// Notify posts notice as an embed.
func (p *Platform) Notify(_ context.Context, target service.NoticeTarget, notice service.Notice) error {
	channelID := p.target(target)
	if channelID == "" {
		return nil
	}
	_, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{noticeEmbed(notice)},
	})
	return err
}

// WarnInactive posts the inactivity warning into the ticket channel.
func (p *Platform) WarnInactive(_ context.Context, ticket domain.Ticket, idle time.Duration) error {
	_, err := p.session.ChannelMessageSendComplex(ticket.ChannelID.String(), &discordgo.MessageSend{
		Content: ticket.OpenerID.Mention(),
		Embeds:  []*discordgo.MessageEmbed{inactivityEmbed(idle)},
	})
	return err
}

// LastMessageAt returns the time of the newest message in the channel.
func (p *Platform) LastMessageAt(_ context.Context, channelID domain.Snowflake) (time.Time, bool, error) {
	msgs, err := p.session.ChannelMessages(channelID.String(), 1, "", "", "")
	if err != nil {
		return time.Time{}, false, err
	}
	if len(msgs) == 0 {
		return time.Time{}, false, nil
	}
	return msgs[0].Timestamp, true, nil
}
