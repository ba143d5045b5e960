// Package discord is the chat surface of a ticket bot: slash commands,
// the category panel, ticket buttons, review prompts and message tracking.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	"github.com/nuvix-market/nuvix-suite/internal/transcript"
	"github.com/nuvix-market/nuvix-suite/internal/worker"
)

// Bot routes gateway events to the services.
type Bot struct {
	session   Session
	cfg       config.DiscordConfig
	name      string
	tiers     *auth.TierEvaluator
	queue     *worker.Queue
	tickets   *service.TicketService
	stats     *service.StatsService
	blacklist *service.BlacklistService
	reviews   *service.ReviewService
	archive   *transcript.Archive
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
	startedAt time.Time
	commands  map[string]Command
}

// Dependencies bundles collaborators for the bot.
type Dependencies struct {
	Session   Session
	Config    config.DiscordConfig
	Name      string
	Tiers     *auth.TierEvaluator
	Queue     *worker.Queue
	Tickets   *service.TicketService
	Stats     *service.StatsService
	Blacklist *service.BlacklistService
	Reviews   *service.ReviewService
	Archive   *transcript.Archive
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Clock     func() time.Time
}

// New builds a bot.
func New(deps Dependencies) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	b := &Bot{
		session:   deps.Session,
		cfg:       deps.Config,
		name:      deps.Name,
		tiers:     deps.Tiers,
		queue:     deps.Queue,
		tickets:   deps.Tickets,
		stats:     deps.Stats,
		blacklist: deps.Blacklist,
		reviews:   deps.Reviews,
		archive:   deps.Archive,
		metrics:   deps.Metrics,
		logger:    logger.With(zap.String("component", "discord")),
		now:       now,
		startedAt: now(),
	}
	b.commands = make(map[string]Command)
	for _, cmd := range b.commandTable() {
		b.commands[cmd.Name] = cmd
	}
	return b
}

// Handlers returns discordgo event handlers bound to ctx.
func (b *Bot) Handlers(ctx context.Context) []interface{} {
	return []interface{}{
		func(_ *discordgo.Session, ev *discordgo.InteractionCreate) {
			b.HandleInteraction(ctx, ev.Interaction)
		},
		func(_ *discordgo.Session, ev *discordgo.MessageCreate) {
			b.HandleMessage(ctx, ev.Message)
		},
		func(_ *discordgo.Session, ev *discordgo.Ready) {
			if ev.User == nil {
				return
			}
			b.logger.Info("gateway ready", zap.String("user", ev.User.Username), zap.Int("guilds", len(ev.Guilds)))
			if !b.cfg.SyncCommands {
				return
			}
			if err := b.SyncCommands(ev.User.ID); err != nil {
				b.logger.Error("command sync failed", zap.Error(err))
			}
		},
	}
}

// HandleInteraction dispatches one interaction. Failures are reported to
// the member as an ephemeral message.
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	c := b.newCall(ctx, i)
	name := "unknown"
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("interaction panic", zap.String("name", name), zap.Any("panic", r))
		}
	}()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		name = "/" + data.Name
		err = b.handleCommand(c, data)
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		name, _ = splitID(data.CustomID)
		err = b.handleComponent(c, data)
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		name, _ = splitID(data.CustomID)
		err = b.handleModal(c, data)
	default:
		return
	}

	b.metrics.RecordCommand(name, outcome(err))
	if err == nil {
		return
	}
	if code := outcome(err); code == "INTERNAL_ERROR" {
		b.logger.Error("interaction failed", zap.String("name", name), zap.String("user_id", c.userID.String()), zap.Error(err))
	} else {
		b.logger.Debug("interaction rejected", zap.String("name", name), zap.String("code", code))
	}
	if replyErr := c.reply(userText(err)); replyErr != nil {
		b.logger.Warn("error reply failed", zap.String("name", name), zap.Error(replyErr))
	}
}

func (b *Bot) newCall(ctx context.Context, i *discordgo.Interaction) *call {
	c := &call{ctx: ctx, session: b.session, i: i}
	switch {
	case i.Member != nil && i.Member.User != nil:
		c.user = i.Member.User
		c.roles = i.Member.Roles
	case i.User != nil:
		c.user = i.User
	}
	if c.user != nil {
		c.userID = domain.MustSnowflake(c.user.ID)
	}
	c.tier = b.tiers.TierOf(c.roles)
	return c
}

func (b *Bot) require(c *call, tier domain.Tier) error {
	if tier == domain.TierNone {
		return nil
	}
	return b.tiers.Require(c.roles, tier)
}

// HandleMessage counts messages staff send inside open tickets.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" || m.Member == nil {
		return
	}
	if !b.tiers.Allows(m.Member.Roles, domain.TierTrialSupport) {
		return
	}
	staffID := domain.MustSnowflake(m.Author.ID)
	channelID := domain.MustSnowflake(m.ChannelID)
	// Reads need no queue slot; only ticket channels are counted.
	isTicket, err := b.tickets.IsTicket(ctx, channelID)
	if err != nil || !isTicket {
		if err != nil {
			b.logger.Warn("ticket lookup failed", zap.String("channel_id", channelID.String()), zap.Error(err))
		}
		return
	}
	err = b.queue.Do(ctx, "record_message", func(ctx context.Context) error {
		_, err := b.tickets.RecordStaffMessage(ctx, staffID, channelID)
		return err
	})
	if err != nil {
		b.logger.Warn("record staff message failed",
			zap.String("staff_id", staffID.String()),
			zap.String("channel_id", channelID.String()),
			zap.Error(err))
	}
}

// logCommand mirrors command usage to the command-log channel.
func (b *Bot) logCommand(format string, args ...any) {
	if b.cfg.CmdLogsChannelID == "" {
		return
	}
	text := fmt.Sprintf(format, args...)
	if _, err := b.session.ChannelMessageSendComplex(b.cfg.CmdLogsChannelID, &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		b.logger.Warn("command log failed", zap.Error(err))
	}
}

func (b *Bot) channelName(channelID string) string {
	ch, err := b.session.Channel(channelID)
	if err != nil || ch == nil {
		return channelID
	}
	return ch.Name
}
