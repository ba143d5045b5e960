package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// Command declares one slash command and the tier it needs.
type Command struct {
	Name        string
	Description string
	Tier        domain.Tier
	Options     []*discordgo.ApplicationCommandOption
	Handler     func(c *call, data discordgo.ApplicationCommandInteractionData) error
}

func userOption(description string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}}
}

func (b *Bot) commandTable() []Command {
	return []Command{
		{Name: "panel", Description: "Post the ticket panel", Tier: domain.TierAdmin, Handler: b.cmdPanel},
		{Name: "transcript", Description: "Create a transcript of this ticket", Tier: domain.TierTrialSupport, Handler: b.cmdTranscript},
		{Name: "close", Description: "Close this ticket", Tier: domain.TierTrialSupport, Handler: b.cmdClose},
		{Name: "delete", Description: "Delete this ticket channel", Tier: domain.TierAdmin, Handler: b.cmdDelete},
		{Name: "add", Description: "Add a user to this ticket", Tier: domain.TierTrialSupport, Options: userOption("User to add"), Handler: b.cmdAdd},
		{Name: "remove", Description: "Remove a user from this ticket", Tier: domain.TierTrialSupport, Options: userOption("User to remove"), Handler: b.cmdRemove},
		{Name: "blacklist_add", Description: "Blacklist a user from opening tickets", Tier: domain.TierAdmin, Options: userOption("User to blacklist"), Handler: b.cmdBlacklistAdd},
		{Name: "blacklist_remove", Description: "Remove a user from the blacklist", Tier: domain.TierAdmin, Options: userOption("User to remove"), Handler: b.cmdBlacklistRemove},
		{Name: "blacklist_list", Description: "List blacklisted users", Tier: domain.TierTrialSupport, Handler: b.cmdBlacklistList},
		{Name: "staffstats_me", Description: "Show your staff stats", Tier: domain.TierTrialSupport, Handler: b.cmdStatsMe},
		{Name: "staffstats_leaderboard", Description: "Show the staff leaderboard", Tier: domain.TierHighStaff, Handler: b.cmdLeaderboard},
		{Name: "activity_me", Description: "Show your ticket activity", Tier: domain.TierTrialSupport, Handler: b.cmdActivityMe},
		{Name: "activity_user", Description: "Show a staff member's ticket activity", Tier: domain.TierHighStaff, Options: userOption("Staff member"), Handler: b.cmdActivityUser},
		{Name: "ping", Description: "Check the bot responds", Handler: b.cmdPing},
		{Name: "status", Description: "Show bot uptime", Tier: domain.TierOwner, Handler: b.cmdStatus},
	}
}

// ApplicationCommands returns the declarations registered with Discord.
func (b *Bot) ApplicationCommands() []*discordgo.ApplicationCommand {
	table := b.commandTable()
	out := make([]*discordgo.ApplicationCommand, 0, len(table))
	for _, cmd := range table {
		out = append(out, &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}
	return out
}

// SyncCommands overwrites the registered commands, scoped to the configured
// guild when one is set.
func (b *Bot) SyncCommands(appID string) error {
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, b.ApplicationCommands())
	if err != nil {
		return fmt.Errorf("sync commands: %w", err)
	}
	b.logger.Sugar().Infof("synced %d commands", len(registered))
	return nil
}

func (b *Bot) handleCommand(c *call, data discordgo.ApplicationCommandInteractionData) error {
	cmd, ok := b.commands[data.Name]
	if !ok {
		return apperrors.NewNotFound("command", map[string]any{"name": data.Name})
	}
	if err := b.require(c, cmd.Tier); err != nil {
		return err
	}
	return cmd.Handler(c, data)
}

// userArg resolves the required user option.
func userArg(data discordgo.ApplicationCommandInteractionData) (domain.Snowflake, string, error) {
	for _, opt := range data.Options {
		if opt.Name != "user" {
			continue
		}
		raw, _ := opt.Value.(string)
		id, err := domain.ParseSnowflake(raw)
		if err != nil {
			return 0, "", apperrors.NewValidationError("Invalid user.", nil)
		}
		name := id.Mention()
		if data.Resolved != nil {
			if u, ok := data.Resolved.Users[raw]; ok && u != nil {
				name = u.Username
			}
		}
		return id, name, nil
	}
	return 0, "", apperrors.NewValidationError("A user is required.", nil)
}

func (b *Bot) cmdPing(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	return c.reply("Pong!")
}

func (b *Bot) cmdStatus(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	uptime := b.now().Sub(b.startedAt).Truncate(time.Second)
	return c.reply(fmt.Sprintf("🟢 %s online for %s", b.name, uptime))
}

func (b *Bot) cmdBlacklistAdd(c *call, data discordgo.ApplicationCommandInteractionData) error {
	userID, name, err := userArg(data)
	if err != nil {
		return err
	}
	err = b.queue.Do(c.ctx, "blacklist_add", func(ctx context.Context) error {
		_, err := b.blacklist.Add(ctx, userID, c.userID)
		return err
	})
	if err != nil {
		return err
	}
	b.logCommand("🚫 /blacklist_add %s by %s", name, c.userName())
	return c.reply(fmt.Sprintf("🚫 %s has been blacklisted.", name))
}

func (b *Bot) cmdBlacklistRemove(c *call, data discordgo.ApplicationCommandInteractionData) error {
	userID, name, err := userArg(data)
	if err != nil {
		return err
	}
	err = b.queue.Do(c.ctx, "blacklist_remove", func(ctx context.Context) error {
		_, err := b.blacklist.Remove(ctx, userID, c.userID)
		return err
	})
	if err != nil {
		return err
	}
	b.logCommand("✅ /blacklist_remove %s by %s", name, c.userName())
	return c.reply(fmt.Sprintf("✅ %s removed from blacklist.", name))
}

func (b *Bot) cmdBlacklistList(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	ids, err := b.blacklist.List(c.ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return c.reply("Blacklist is empty.")
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = id.String()
	}
	return c.reply(truncate("**Blacklisted IDs:**\n"+strings.Join(lines, "\n"), 2000))
}

func (b *Bot) cmdStatsMe(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	stat, err := b.stats.Get(c.ctx, c.userID)
	if err != nil {
		return err
	}
	return c.replyEmbed(&discordgo.MessageEmbed{
		Title: "📊 Your Staff Stats",
		Color: service.ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Claims", Value: fmt.Sprint(stat.Claims), Inline: true},
			{Name: "Closed", Value: fmt.Sprint(stat.Closed), Inline: true},
			{Name: "Active tickets (≥5 msgs)", Value: fmt.Sprint(stat.ActiveTickets()), Inline: true},
		},
	})
}

func (b *Bot) cmdLeaderboard(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	board, err := b.stats.Leaderboard(c.ctx, service.DefaultLeaderboardSize)
	if err != nil {
		return err
	}
	description := "No data yet."
	if len(board) > 0 {
		lines := make([]string, len(board))
		for i, stat := range board {
			lines[i] = fmt.Sprintf("**#%d** %s — Closed: %d • Claims: %d", i+1, stat.StaffID.Mention(), stat.Closed, stat.Claims)
		}
		description = strings.Join(lines, "\n")
	}
	return c.replyEmbed(&discordgo.MessageEmbed{
		Title:       "🏆 Staff Leaderboard",
		Description: description,
		Color:       service.ColorGold,
	})
}

func (b *Bot) cmdActivityMe(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	n, err := b.stats.ActiveTicketCount(c.ctx, c.userID)
	if err != nil {
		return err
	}
	return c.reply(fmt.Sprintf("✅ You have been active (≥5 msgs) in **%d** tickets.", n))
}

func (b *Bot) cmdActivityUser(c *call, data discordgo.ApplicationCommandInteractionData) error {
	userID, _, err := userArg(data)
	if err != nil {
		return err
	}
	n, err := b.stats.ActiveTicketCount(c.ctx, userID)
	if err != nil {
		return err
	}
	return c.reply(fmt.Sprintf("✅ %s has been active (≥5 msgs) in **%d** tickets.", userID.Mention(), n))
}
