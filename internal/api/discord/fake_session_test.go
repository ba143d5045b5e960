package discord

import (
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var errUnknownChannel = errors.New("HTTP 404 Not Found, {\"message\": \"Unknown Channel\", \"code\": 10003}")

// fakeSession records every call the bot makes.
type fakeSession struct {
	mu        sync.Mutex
	nextID    int
	channels  map[string]*discordgo.Channel
	history   map[string][]*discordgo.Message
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	sent      map[string][]*discordgo.MessageSend
	created   []discordgo.GuildChannelCreateData
	edited    map[string]string
	deleted   []string
	permSet   map[string]int64
	permDel   []string
	commands  []*discordgo.ApplicationCommand
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		nextID:   500,
		channels: map[string]*discordgo.Channel{},
		history:  map[string][]*discordgo.Message{},
		sent:     map[string][]*discordgo.MessageSend{},
		edited:   map[string]string{},
		permSet:  map[string]int64{},
	}
}

func (f *fakeSession) addChannel(ch *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func (f *fakeSession) lastFollowup() *discordgo.WebhookParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.followups) == 0 {
		return nil
	}
	return f.followups[len(f.followups)-1]
}

func (f *fakeSession) messages(channelID string) []*discordgo.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.MessageSend(nil), f.sent[channelID]...)
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, errUnknownChannel
	}
	msgs := f.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errUnknownChannel
	}
	return ch, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, data)
	ch := &discordgo.Channel{ID: strconv.Itoa(f.nextID), GuildID: guildID, Name: data.Name, ParentID: data.ParentID, Type: data.Type}
	f.nextID++
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeSession) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errUnknownChannel
	}
	f.edited[channelID] = data.Name
	ch.Name = data.Name
	return ch, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errUnknownChannel
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return ch, nil
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, _ discordgo.PermissionOverwriteType, allow, _ int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permSet[channelID+"/"+targetID] = allow
	return nil
}

func (f *fakeSession) ChannelPermissionDelete(channelID, targetID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permDel = append(f.permDel, channelID+"/"+targetID)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_ string, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = commands
	return commands, nil
}
