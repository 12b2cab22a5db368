package discord

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/kikitori/internal/discord"
)

// Client talks to the Discord REST API only. No gateway connection is
// opened, so Close has nothing to tear down beyond idle connections.
type Client struct {
	session *discordgo.Session
}

func NewClient(token string) (discordpkg.Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Client{session: s}, nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, truncateContent(content))
	return err
}

func (c *Client) SendChannelMessageWithFile(msg discordpkg.FileMessage) error {
	_, err := c.session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
		Content: truncateContent(msg.Content),
		Files: []*discordgo.File{
			{Name: msg.Filename, ContentType: "text/plain; charset=utf-8", Reader: bytes.NewReader(msg.FileBody)},
		},
	})
	return err
}

// ChannelName returns the channel name, or the id itself when the channel
// cannot be resolved.
func (c *Client) ChannelName(channelID string) string {
	channel, err := c.session.Channel(channelID)
	if err != nil {
		if !isRESTNotFound(err) {
			slog.Warn("failed to resolve discord channel", "channel_id", channelID, "error", err)
		}
		return channelID
	}
	if channel == nil || channel.Name == "" {
		return channelID
	}
	return channel.Name
}

func (c *Client) Close() error {
	if c.session != nil && c.session.Client != nil {
		c.session.Client.CloseIdleConnections()
	}
	return nil
}

func isRESTNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}

func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= discordpkg.MaxMessageContentLength {
		return content
	}
	return string(runes[:discordpkg.MaxMessageContentLength-1]) + "…"
}
