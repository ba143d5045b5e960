package discord

import (
	"bytes"
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// call is one interaction being handled.
type call struct {
	ctx       context.Context
	session   Session
	i         *discordgo.Interaction
	user      *discordgo.User
	userID    domain.Snowflake
	roles     []string
	tier      domain.Tier
	deferred  bool
	responded bool
}

func (c *call) channelID() domain.Snowflake {
	return domain.MustSnowflake(c.i.ChannelID)
}

func (c *call) userName() string {
	if c.user == nil {
		return c.userID.String()
	}
	return c.user.Username
}

func (c *call) respond(resp *discordgo.InteractionResponse) error {
	c.responded = true
	return c.session.InteractionRespond(c.i, resp)
}

// deferReply acknowledges the interaction so slow work can follow up.
func (c *call) deferReply() error {
	if c.responded {
		return nil
	}
	c.deferred = true
	return c.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// reply sends an ephemeral message, as a followup once the interaction was deferred.
func (c *call) reply(content string) error {
	return c.send(content, nil, nil)
}

func (c *call) replyEmbed(embed *discordgo.MessageEmbed) error {
	return c.send("", embed, nil)
}

func (c *call) replyFile(content, name string, data []byte) error {
	return c.send(content, nil, &discordgo.File{Name: name, ContentType: "text/plain", Reader: bytes.NewReader(data)})
}

func (c *call) send(content string, embed *discordgo.MessageEmbed, file *discordgo.File) error {
	var embeds []*discordgo.MessageEmbed
	if embed != nil {
		embeds = []*discordgo.MessageEmbed{embed}
	}
	var files []*discordgo.File
	if file != nil {
		files = []*discordgo.File{file}
	}
	if c.deferred {
		_, err := c.session.FollowupMessageCreate(c.i, true, &discordgo.WebhookParams{
			Content: content,
			Embeds:  embeds,
			Files:   files,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return err
	}
	if c.responded {
		return nil
	}
	return c.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
			Files:   files,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// userText maps an error to the short message shown to the member.
func userText(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeBlacklisted:
		return "🚫 You are blacklisted from opening tickets."
	case apperrors.CodeMisconfiguredTarget:
		return "❌ Ticket category is not configured correctly."
	case apperrors.CodeNotFound:
		switch apperrors.NotFoundResource(err) {
		case "ticket":
			return "This is not a registered ticket channel."
		case "command", "component", "modal":
			return "❌ This interaction is no longer supported."
		}
	}
	return apperrors.UserMessage(err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.CodeOf(err)
}
