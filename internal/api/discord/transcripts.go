package discord

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/transcript"
)

const historyPage = 100

// fetchHistory pages backwards through the whole channel.
func (b *Bot) fetchHistory(ctx context.Context, channelID string) ([]transcript.Message, error) {
	var out []transcript.Message
	before := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.session.ChannelMessages(channelID, historyPage, before, "", "")
		if err != nil {
			return nil, fmt.Errorf("read channel history: %w", err)
		}
		for _, m := range page {
			out = append(out, toTranscriptMessage(m))
		}
		if len(page) < historyPage {
			return out, nil
		}
		before = page[len(page)-1].ID
	}
}

func toTranscriptMessage(m *discordgo.Message) transcript.Message {
	msg := transcript.Message{
		ID:        domain.MustSnowflake(m.ID),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorName = m.Author.Username
		msg.AuthorID = domain.MustSnowflake(m.Author.ID)
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, transcript.Attachment{Filename: a.Filename, URL: a.URL})
	}
	return msg
}

// buildTranscript renders the channel history and archives it on disk.
func (b *Bot) buildTranscript(ctx context.Context, channelID, name string) (string, []byte, error) {
	messages, err := b.fetchHistory(ctx, channelID)
	if err != nil {
		return "", nil, err
	}
	id := domain.MustSnowflake(channelID)
	content := transcript.Render(name, id, messages)
	at := b.now()
	if b.archive != nil {
		path, err := b.archive.Save(id, content, at)
		if err != nil {
			return "", nil, err
		}
		b.logger.Info("transcript archived", zap.String("path", path))
	}
	return transcript.FileName(id, at), []byte(content), nil
}

// publishTranscript posts the file to the transcripts and logs channels.
func (b *Bot) publishTranscript(title, file string, content []byte) {
	for _, target := range []string{b.cfg.TranscriptsChannelID, b.cfg.LogsChannelID} {
		if target == "" {
			continue
		}
		_, err := b.session.ChannelMessageSendComplex(target, &discordgo.MessageSend{
			Content: title,
			Files:   []*discordgo.File{{Name: file, ContentType: "text/plain", Reader: bytes.NewReader(content)}},
		})
		if err != nil {
			b.logger.Warn("transcript post failed", zap.String("channel_id", target), zap.Error(err))
		}
	}
}

// archiveTranscript builds and publishes a transcript, logging failures.
func (b *Bot) archiveTranscript(ctx context.Context, channelID, name, title string) {
	file, content, err := b.buildTranscript(ctx, channelID, name)
	if err != nil {
		b.logger.Warn("transcript failed", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	b.publishTranscript(title, file, content)
}
