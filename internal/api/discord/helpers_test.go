package discord

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	"github.com/nuvix-market/nuvix-suite/internal/transcript"
	"github.com/nuvix-market/nuvix-suite/internal/worker"
)

const (
	guildID      = "1000"
	categoryID   = "900"
	logsID       = "901"
	cmdLogsID    = "902"
	transcriptID = "903"
	reviewsID    = "904"

	roleTrial     = "11"
	roleHighStaff = "14"
	roleAdmin     = "15"
	roleOwner     = "16"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type botEnv struct {
	bot        *Bot
	session    *fakeSession
	store      *repository.FileStore
	clock      *fakeClock
	tickets    *service.TicketService
	stats      *service.StatsService
	blacklist  *service.BlacklistService
	reviews    *service.ReviewService
	metrics    *observability.Metrics
	archiveDir string
}

func defaultDiscordConfig() config.DiscordConfig {
	return config.DiscordConfig{
		GuildID:              guildID,
		TicketCategoryID:     categoryID,
		LogsChannelID:        logsID,
		CmdLogsChannelID:     cmdLogsID,
		TranscriptsChannelID: transcriptID,
		ReviewsChannelID:     reviewsID,
		FooterText:           "Nuvix Market",
	}
}

func newBotEnv(t *testing.T, cfg config.DiscordConfig) *botEnv {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	clock := &fakeClock{now: baseTime}
	dispatcher := events.NewInMemoryDispatcher()
	stats := service.NewStatsService(store.Stats(), nil)
	blacklist := service.NewBlacklistService(service.BlacklistDependencies{
		Blacklist:  store.Blacklist(),
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		Tickets:    store.Tickets(),
		Blacklist:  store.Blacklist(),
		Stats:      stats,
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	reviews := service.NewReviewService(service.ReviewDependencies{
		Reviews:    store.Reviews(),
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})

	metrics := observability.NewMetrics()
	queue := worker.NewQueue(16, nil, metrics)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = queue.Run(ctx) }()
	t.Cleanup(cancel)

	session := newFakeSession()
	session.addChannel(&discordgo.Channel{ID: categoryID, Name: "Tickets", Type: discordgo.ChannelTypeGuildCategory})

	archiveDir := t.TempDir()
	bot := New(Dependencies{
		Session: session,
		Config:  cfg,
		Name:    "Nuvix Tickets",
		Tiers: auth.NewTierEvaluator(config.RolesConfig{
			TrialSupport: roleTrial,
			HighStaff:    roleHighStaff,
			Admin:        roleAdmin,
			Owner:        roleOwner,
		}),
		Queue:     queue,
		Tickets:   tickets,
		Stats:     stats,
		Blacklist: blacklist,
		Reviews:   reviews,
		Archive:   transcript.NewArchive(archiveDir),
		Metrics:   metrics,
		Clock:     clock.Now,
	})
	return &botEnv{
		bot:        bot,
		session:    session,
		store:      store,
		clock:      clock,
		tickets:    tickets,
		stats:      stats,
		blacklist:  blacklist,
		reviews:    reviews,
		metrics:    metrics,
		archiveDir: archiveDir,
	}
}

// openTicket records a ticket for channel and registers the channel with the session.
func (e *botEnv) openTicket(t *testing.T, channelID, openerID, name string) {
	t.Helper()
	e.session.addChannel(&discordgo.Channel{ID: channelID, GuildID: guildID, Name: name, Type: discordgo.ChannelTypeGuildText})
	_, err := e.tickets.Open(context.Background(), service.OpenTicketInput{
		ChannelID: domain.MustSnowflake(channelID),
		OpenerID:  domain.MustSnowflake(openerID),
		Category:  domain.CategorySupport,
	})
	require.NoError(t, err)
}

func member(id, name string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: name}, Roles: roles}
}

func commandInteraction(name, channelID string, m *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   guildID,
		ChannelID: channelID,
		Member:    m,
		Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}
}

func userOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "user",
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: id,
	}
}

func componentInteraction(customID, channelID string, m *discordgo.Member, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   guildID,
		ChannelID: channelID,
		Member:    m,
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}
}

func dmComponentInteraction(customID string, user *discordgo.User, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "dm-" + user.ID,
		User:      user,
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}
}

func modalInteraction(customID, channelID string, m *discordgo.Member, user *discordgo.User, fields map[string]string) *discordgo.Interaction {
	var rows []discordgo.MessageComponent
	for id, value := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: value},
		}})
	}
	return &discordgo.Interaction{
		Type:      discordgo.InteractionModalSubmit,
		GuildID:   guildID,
		ChannelID: channelID,
		Member:    m,
		User:      user,
		Data:      discordgo.ModalSubmitInteractionData{CustomID: customID, Components: rows},
	}
}

// replyContent returns the text of the latest ephemeral reply.
func (e *botEnv) replyContent() string {
	if f := e.session.lastFollowup(); f != nil {
		return f.Content
	}
	if r := e.session.lastResponse(); r != nil && r.Data != nil {
		return r.Data.Content
	}
	return ""
}
