package alerts_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/ogulcanaydogan/viraltrack/pkg/alerts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	channelID string
	content   string
	err       error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.content = content
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "1", ChannelID: channelID, Content: content}, nil
}

func TestDiscordNotifier_Send(t *testing.T) {
	sender := &fakeSender{}
	n := alerts.NewDiscordNotifierWithSender(sender, "chan-1")
	assert.Equal(t, "discord", n.Name())

	require.NoError(t, n.Send(context.Background(), "viral"))
	assert.Equal(t, "chan-1", sender.channelID)
	assert.Equal(t, "viral", sender.content)
}

func TestDiscordNotifier_TruncatesLongMessages(t *testing.T) {
	sender := &fakeSender{}
	n := alerts.NewDiscordNotifierWithSender(sender, "chan-1")

	require.NoError(t, n.Send(context.Background(), strings.Repeat("é", 2500)))
	assert.Equal(t, 2000, utf8.RuneCountInString(sender.content))
	assert.True(t, strings.HasSuffix(sender.content, "…"))
}

func TestDiscordNotifier_Error(t *testing.T) {
	n := alerts.NewDiscordNotifierWithSender(&fakeSender{err: errors.New("HTTP 403 Forbidden")}, "chan-1")
	err := n.Send(context.Background(), "viral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
