package discord

// Discord message content is capped at 2000 characters; longer reports are
// sent as an attachment only.
const MaxMessageContentLength = 2000

type FileMessage struct {
	ChannelID string
	Content   string
	Filename  string
	FileBody  []byte
}

type Client interface {
	SendChannelMessage(channelID, content string) error
	SendChannelMessageWithFile(msg FileMessage) error
	ChannelName(channelID string) string
	Close() error
}
