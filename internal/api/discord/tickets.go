package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

const (
	memberAllow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory | discordgo.PermissionAttachFiles
	staffAllow = memberAllow | discordgo.PermissionManageMessages

	closedPrefix = "closed-"
)

func (b *Bot) cmdPanel(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	if _, err := b.session.ChannelMessageSendComplex(c.i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{b.panelEmbed()},
		Components: panelComponents(),
	}); err != nil {
		return err
	}
	b.logCommand("🧩 /panel used by %s", c.userName())
	return c.reply("✅ Panel posted.")
}

func (b *Bot) handleComponent(c *call, data discordgo.MessageComponentInteractionData) error {
	id, args := splitID(data.CustomID)
	switch id {
	case idCategorySelect:
		return b.onCategorySelect(c, data)
	case idAssign:
		return b.onAssign(c)
	case idUnclaim:
		return b.onUnclaim(c)
	case idClose:
		if err := b.require(c, domain.TierTrialSupport); err != nil {
			return err
		}
		return b.closeTicket(c, false, "⏹️ Ticket closed.")
	case idReviewRate:
		return b.onReviewRate(c, args, data)
	}
	return apperrors.NewNotFound("component", map[string]any{"custom_id": data.CustomID})
}

func (b *Bot) handleModal(c *call, data discordgo.ModalSubmitInteractionData) error {
	id, args := splitID(data.CustomID)
	switch id {
	case idTicketModal:
		if len(args) != 1 {
			return apperrors.NewValidationError("Unknown ticket category.", nil)
		}
		return b.onTicketModal(c, domain.Category(args[0]), data)
	case idReviewModal:
		return b.onReviewModal(c, args, data)
	}
	return apperrors.NewNotFound("modal", map[string]any{"custom_id": data.CustomID})
}

func (b *Bot) onCategorySelect(c *call, data discordgo.MessageComponentInteractionData) error {
	if len(data.Values) == 0 {
		return apperrors.NewValidationError("Select a category.", nil)
	}
	spec, ok := domain.LookupCategory(domain.Category(data.Values[0]))
	if !ok {
		return apperrors.NewValidationError("Unknown ticket category.", nil)
	}
	if err := b.tickets.CheckOpener(c.ctx, c.userID); err != nil {
		return err
	}
	rows := make([]discordgo.MessageComponent, 0, len(spec.Questions))
	for i, q := range spec.Questions {
		style := discordgo.TextInputShort
		if q.Long {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:  fmt.Sprintf("q%d", i),
				Label:     q.Label,
				Style:     style,
				Required:  true,
				MaxLength: q.MaxLength,
			},
		}})
	}
	return c.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   ticketModalID(spec.Category),
			Title:      truncate(spec.Label, 45),
			Components: rows,
		},
	})
}

// modalValues flattens submitted text inputs by custom id.
func modalValues(components []discordgo.MessageComponent) map[string]string {
	out := map[string]string{}
	var walk func([]discordgo.MessageComponent)
	walk = func(list []discordgo.MessageComponent) {
		for _, comp := range list {
			switch v := comp.(type) {
			case *discordgo.ActionsRow:
				walk(v.Components)
			case discordgo.ActionsRow:
				walk(v.Components)
			case *discordgo.TextInput:
				out[v.CustomID] = strings.TrimSpace(v.Value)
			case discordgo.TextInput:
				out[v.CustomID] = strings.TrimSpace(v.Value)
			}
		}
	}
	walk(components)
	return out
}

func (b *Bot) onTicketModal(c *call, category domain.Category, data discordgo.ModalSubmitInteractionData) error {
	spec, ok := domain.LookupCategory(category)
	if !ok {
		return apperrors.NewValidationError("Unknown ticket category.", nil)
	}
	if err := b.tickets.CheckOpener(c.ctx, c.userID); err != nil {
		return err
	}
	parent, err := b.ticketParent()
	if err != nil {
		return err
	}

	values := modalValues(data.Components)
	answers := make([]answer, len(spec.Questions))
	for i, q := range spec.Questions {
		answers[i] = answer{question: q, value: values[fmt.Sprintf("q%d", i)]}
	}

	guildID := c.i.GuildID
	if guildID == "" {
		guildID = b.cfg.GuildID
	}
	channel, err := b.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 ticketChannelName(c.userName(), category),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             parent.ID,
		PermissionOverwrites: b.ticketOverwrites(guildID, c.userID.String()),
	})
	if err != nil {
		return fmt.Errorf("create ticket channel: %w", err)
	}
	channelID := domain.MustSnowflake(channel.ID)

	err = b.queue.Do(c.ctx, "open_ticket", func(ctx context.Context) error {
		_, err := b.tickets.Open(ctx, service.OpenTicketInput{
			ChannelID:  channelID,
			OpenerID:   c.userID,
			OpenerName: c.userName(),
			Category:   category,
		})
		return err
	})
	if err != nil {
		if _, delErr := b.session.ChannelDelete(channel.ID); delErr != nil {
			b.logger.Warn("orphan ticket channel", zap.String("channel_id", channel.ID), zap.Error(delErr))
		}
		return err
	}

	if _, err := b.session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content:    c.userID.Mention(),
		Embeds:     []*discordgo.MessageEmbed{b.ticketEmbed(spec, c.userID, answers)},
		Components: ticketButtons(),
	}); err != nil {
		b.logger.Warn("ticket greeting failed", zap.String("channel_id", channel.ID), zap.Error(err))
	}
	return c.reply("✅ Ticket created: " + channelID.ChannelMention())
}

// ticketParent resolves the configured category container.
func (b *Bot) ticketParent() (*discordgo.Channel, error) {
	misconfigured := apperrors.NewMisconfiguredTarget("ticket category", map[string]any{"id": b.cfg.TicketCategoryID})
	if b.cfg.TicketCategoryID == "" {
		return nil, misconfigured
	}
	parent, err := b.session.Channel(b.cfg.TicketCategoryID)
	if err != nil || parent == nil || parent.Type != discordgo.ChannelTypeGuildCategory {
		return nil, misconfigured
	}
	return parent, nil
}

func ticketChannelName(username string, category domain.Category) string {
	r := []rune(username)
	if len(r) > 20 {
		r = r[:20]
	}
	return string(r) + "-" + string(category)
}

func (b *Bot) ticketOverwrites(guildID, openerID string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: openerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAllow},
	}
	for _, roleID := range b.tiers.RoleIDs(domain.TierTrialSupport) {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffAllow,
		})
	}
	return overwrites
}

func (b *Bot) onAssign(c *call) error {
	if err := b.require(c, domain.TierTrialSupport); err != nil {
		return err
	}
	err := b.queue.Do(c.ctx, "assign", func(ctx context.Context) error {
		_, err := b.tickets.Assign(ctx, c.channelID(), c.userID)
		return err
	})
	if err != nil {
		return err
	}
	return c.reply(fmt.Sprintf("✅ Assigned to %s.", c.userID.Mention()))
}

func (b *Bot) onUnclaim(c *call) error {
	if err := b.require(c, domain.TierTrialSupport); err != nil {
		return err
	}
	elevated := c.tier.AtLeast(domain.TierAdmin)
	err := b.queue.Do(c.ctx, "unassign", func(ctx context.Context) error {
		_, err := b.tickets.Unassign(ctx, c.channelID(), c.userID, elevated)
		return err
	})
	if err != nil {
		return err
	}
	return c.reply("🔓 Ticket unclaimed.")
}

func (b *Bot) cmdClose(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	return b.closeTicket(c, false, "Ticket closed.")
}

func (b *Bot) cmdDelete(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	return b.closeTicket(c, true, "🗑️ Ticket deleted.")
}

// closeTicket ends the ticket in the current channel. force also removes
// channels that have no record.
func (b *Bot) closeTicket(c *call, force bool, done string) error {
	name := b.channelName(c.i.ChannelID)
	req := service.CloseRequest{
		ChannelID:   c.channelID(),
		ChannelName: name,
		ActorID:     c.userID,
		ClosedBy:    c.userName(),
	}
	if err := c.deferReply(); err != nil {
		return err
	}

	if force {
		b.logCommand("🗑️ /delete by %s in #%s", c.userName(), name)
		b.archiveTranscript(c.ctx, c.i.ChannelID, name, fmt.Sprintf("Deleted ticket transcript • #%s", name))
	}

	var ticket *domain.Ticket
	err := b.queue.Do(c.ctx, "close_ticket", func(ctx context.Context) error {
		var err error
		if force {
			ticket, err = b.tickets.ForceDelete(ctx, req)
		} else {
			ticket, err = b.tickets.Close(ctx, req)
		}
		return err
	})
	if err != nil {
		return err
	}

	if !force {
		b.logCommand("⏹️ /close by %s in #%s", c.userName(), name)
		b.archiveTranscript(c.ctx, c.i.ChannelID, name,
			fmt.Sprintf("Ticket transcript • #%s • closed by %s (%s)", name, c.userName(), c.userID))
	}
	if ticket != nil {
		b.promptReview(ticket)
	}
	if err := c.reply(done); err != nil {
		b.logger.Warn("close reply failed", zap.Error(err))
	}

	if !strings.HasPrefix(name, closedPrefix) {
		if _, err := b.session.ChannelEdit(c.i.ChannelID, &discordgo.ChannelEdit{Name: truncate(closedPrefix+name, 100)}); err != nil {
			b.logger.Debug("rename closed ticket failed", zap.String("channel_id", c.i.ChannelID), zap.Error(err))
		}
	}
	if _, err := b.session.ChannelDelete(c.i.ChannelID); err != nil {
		b.logger.Warn("delete ticket channel failed", zap.String("channel_id", c.i.ChannelID), zap.Error(err))
	}
	return nil
}

// promptReview DMs the opener the closure notice and a rating select.
func (b *Bot) promptReview(ticket *domain.Ticket) {
	prompt := b.reviews.IssuePrompt(ticket)
	dm, err := b.session.UserChannelCreate(ticket.OpenerID.String())
	if err != nil {
		b.logger.Debug("open DM failed", zap.String("user_id", ticket.OpenerID.String()), zap.Error(err))
		return
	}
	if _, err := b.session.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{closedEmbed()},
		Components: reviewComponents(prompt),
	}); err != nil {
		b.logger.Debug("review prompt failed", zap.String("user_id", ticket.OpenerID.String()), zap.Error(err))
	}
}

func (b *Bot) cmdTranscript(c *call, _ discordgo.ApplicationCommandInteractionData) error {
	name := b.channelName(c.i.ChannelID)
	isTicket, err := b.tickets.IsTicket(c.ctx, c.channelID())
	if err != nil {
		return err
	}
	if !isTicket && !strings.HasPrefix(name, closedPrefix) {
		return c.reply("This does not look like a ticket channel.")
	}
	if err := c.deferReply(); err != nil {
		return err
	}
	file, content, err := b.buildTranscript(c.ctx, c.i.ChannelID, name)
	if err != nil {
		b.logger.Warn("manual transcript failed", zap.String("channel_id", c.i.ChannelID), zap.Error(err))
		return c.reply("Could not create transcript.")
	}
	b.publishTranscript(fmt.Sprintf("Manual transcript • #%s", name), file, content)
	b.logCommand("🧾 /transcript by %s in #%s", c.userName(), name)
	return c.replyFile("🧾 Transcript created.", file, content)
}

func (b *Bot) cmdAdd(c *call, data discordgo.ApplicationCommandInteractionData) error {
	userID, name, err := userArg(data)
	if err != nil {
		return err
	}
	if err := b.requireTicketChannel(c); err != nil {
		return err
	}
	if err := b.session.ChannelPermissionSet(c.i.ChannelID, userID.String(), discordgo.PermissionOverwriteTypeMember, memberAllow, 0); err != nil {
		return err
	}
	b.logCommand("➕ /add %s by %s in #%s", name, c.userName(), b.channelName(c.i.ChannelID))
	return c.reply(fmt.Sprintf("✅ %s added to the ticket.", userID.Mention()))
}

func (b *Bot) cmdRemove(c *call, data discordgo.ApplicationCommandInteractionData) error {
	userID, name, err := userArg(data)
	if err != nil {
		return err
	}
	if err := b.requireTicketChannel(c); err != nil {
		return err
	}
	if err := b.session.ChannelPermissionDelete(c.i.ChannelID, userID.String()); err != nil {
		return err
	}
	b.logCommand("➖ /remove %s by %s in #%s", name, c.userName(), b.channelName(c.i.ChannelID))
	return c.reply(fmt.Sprintf("✅ %s removed from the ticket.", userID.Mention()))
}

func (b *Bot) requireTicketChannel(c *call) error {
	ok, err := b.tickets.IsTicket(c.ctx, c.channelID())
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError("Use this inside a ticket channel.", nil)
	}
	return nil
}
