package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/service"
)

const colorFuchsia = 0xeb459e

func (b *Bot) decorate(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if b.cfg.FooterText != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: b.cfg.FooterText}
	}
	if b.cfg.BannerURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: b.cfg.BannerURL}
	}
	return embed
}

func (b *Bot) panelEmbed() *discordgo.MessageEmbed {
	return b.decorate(&discordgo.MessageEmbed{
		Title:       "Nuvix Tickets",
		Description: "Select a category below to open a ticket. **Response time may vary.**",
		Color:       colorFuchsia,
	})
}

func panelComponents() []discordgo.MessageComponent {
	var options []discordgo.SelectMenuOption
	for _, spec := range domain.Categories() {
		options = append(options, discordgo.SelectMenuOption{
			Label: spec.Emoji + " " + spec.Label,
			Value: string(spec.Category),
		})
	}
	one := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    idCategorySelect,
				Placeholder: "Select a ticket category…",
				MinValues:   &one,
				MaxValues:   1,
				Options:     options,
			},
		}},
	}
}

// answer pairs an intake question with what the opener typed.
type answer struct {
	question domain.Question
	value    string
}

func (b *Bot) ticketEmbed(spec domain.CategorySpec, opener domain.Snowflake, answers []answer) *discordgo.MessageEmbed {
	var details []string
	for _, a := range answers {
		if a.value == "" {
			continue
		}
		details = append(details, fmt.Sprintf("**%s:** %s", a.question.Summary, a.value))
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Category", Value: spec.Label, Inline: true},
		{Name: "User", Value: opener.Mention(), Inline: true},
	}
	if len(details) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Details", Value: truncate(strings.Join(details, "\n"), 1024)})
	}
	return b.decorate(&discordgo.MessageEmbed{
		Title:       "Support Ticket",
		Description: "Please wait until one of our support team members can help you.\n**Response time may vary**; please be patient.",
		Color:       colorFuchsia,
		Fields:      fields,
	})
}

func ticketButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Assign me", Style: discordgo.SuccessButton, CustomID: idAssign},
			discordgo.Button{Label: "Unclaim", Style: discordgo.SecondaryButton, CustomID: idUnclaim},
			discordgo.Button{Label: "Close", Style: discordgo.DangerButton, CustomID: idClose},
		}},
	}
}

func closedEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Your ticket has been closed",
		Description: "Thanks for contacting support! You can leave a review below.",
		Color:       service.ColorBlurple,
	}
}

func reviewComponents(prompt domain.ReviewPrompt) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, domain.MaxStars)
	for stars := domain.MinStars; stars <= domain.MaxStars; stars++ {
		options = append(options, discordgo.SelectMenuOption{
			Label: strings.Repeat("⭐", stars),
			Value: fmt.Sprint(stars),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    reviewRateID(prompt),
				Placeholder: "Rate your support (1–5 stars)",
				Options:     options,
			},
		}},
	}
}

func inactivityEmbed(idle time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⏰ Ticket inactivity warning",
		Description: fmt.Sprintf("There has been no activity in this ticket for **%d hours**. "+
			"Please reply if you still need help. Otherwise, staff may close this ticket.", int(idle.Hours())),
		Color: service.ColorOrange,
	}
}

// noticeEmbed renders a platform-neutral notice.
func noticeEmbed(n service.Notice) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
	}
	if !n.Timestamp.IsZero() {
		embed.Timestamp = n.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range n.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: truncate(f.Value, 1024), Inline: f.Inline})
	}
	return embed
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
