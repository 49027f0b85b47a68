package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Discord rejects message content longer than this many characters.
const discordMaxContent = 2000

// ChannelMessenger is the part of *discordgo.Session used for sending.
type ChannelMessenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// GuildChannelLister is the part of *discordgo.Session used for discovery.
type GuildChannelLister interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

// DiscordDestination posts to a fixed set of text channels.
type DiscordDestination struct {
	session    ChannelMessenger
	channelIDs []string
}

func NewDiscordDestination(session ChannelMessenger, channelIDs []string) *DiscordDestination {
	return &DiscordDestination{session: session, channelIDs: channelIDs}
}

func (d *DiscordDestination) Name() string { return "discord" }

// Send posts to every channel; a failing channel does not stop the rest.
func (d *DiscordDestination) Send(ctx context.Context, msg *Message) error {
	content := truncateRunes(msg.Content(), discordMaxContent)

	var errs []error
	for _, channelID := range d.channelIDs {
		data := &discordgo.MessageSend{Content: content}
		if f := msg.Attachment; f != nil {
			data.Files = []*discordgo.File{{
				Name:        f.Name,
				ContentType: f.ContentType,
				Reader:      bytes.NewReader(f.Data),
			}}
		}
		if _, err := d.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", channelID, err))
		}
	}
	return errors.Join(errs...)
}

// ResolveChannels returns the IDs of text channels named exactly name
// across guildIDs, in guild order.
func ResolveChannels(ctx context.Context, s GuildChannelLister, guildIDs []string, name string) ([]string, error) {
	perGuild := make([][]string, len(guildIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, guildID := range guildIDs {
		g.Go(func() error {
			channels, err := s.GuildChannels(guildID, discordgo.WithContext(ctx))
			if err != nil {
				return fmt.Errorf("failed to list channels of guild %s: %w", guildID, err)
			}
			for _, ch := range channels {
				if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
					perGuild[i] = append(perGuild[i], ch.ID)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ids []string
	for _, chans := range perGuild {
		ids = append(ids, chans...)
	}
	return ids, nil
}

// OpenDiscord connects to the gateway and waits for the Ready event,
// returning the session and the IDs of the guilds the bot belongs to.
func OpenDiscord(ctx context.Context, token string, logger *zap.Logger) (*discordgo.Session, []string, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	ready := make(chan []string, 1)
	session.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("logged in", zap.String("user", r.User.Username))
		ids := make([]string, 0, len(r.Guilds))
		for _, g := range r.Guilds {
			ids = append(ids, g.ID)
		}
		ready <- ids
	})

	if err := session.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to open discord gateway: %w", err)
	}

	select {
	case ids := <-ready:
		return session, ids, nil
	case <-ctx.Done():
		session.Close()
		return nil, nil, fmt.Errorf("waiting for discord ready: %w", ctx.Err())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
