package discord

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

func (b *Bot) onReviewRate(c *call, args []string, data discordgo.MessageComponentInteractionData) error {
	prompt, err := parseReviewRateID(args)
	if err != nil {
		return apperrors.NewValidationError("This review prompt is invalid.", nil)
	}
	if err := b.reviews.CheckPrompt(prompt, c.userID); err != nil {
		return err
	}
	if len(data.Values) == 0 {
		return apperrors.NewValidationError("Pick a rating.", nil)
	}
	stars, err := strconv.Atoi(data.Values[0])
	if err != nil {
		return apperrors.NewValidationError("Pick a rating.", nil)
	}
	return c.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: reviewModalID(prompt.UserID, prompt.ChannelID, stars),
			Title:    "Leave a review",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "comment",
						Label:     "Comment (optional)",
						Style:     discordgo.TextInputParagraph,
						Required:  false,
						MaxLength: 1000,
					},
				}},
			},
		},
	})
}

func (b *Bot) onReviewModal(c *call, args []string, data discordgo.ModalSubmitInteractionData) error {
	userID, channelID, stars, err := parseReviewModalID(args)
	if err != nil {
		return apperrors.NewValidationError("This review prompt is invalid.", nil)
	}
	if userID != c.userID {
		return apperrors.NewPermissionDenied("This review is not for you.")
	}
	comment := modalValues(data.Components)["comment"]
	err = b.queue.Do(c.ctx, "submit_review", func(ctx context.Context) error {
		_, err := b.reviews.Submit(ctx, userID, channelID, stars, comment)
		return err
	})
	if err != nil {
		return err
	}
	return c.reply("✅ Thanks! Your review has been submitted.")
}
