package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// api is the subset of the Slack Web API used by Notifier.
type api interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetConversationInfoContext(ctx context.Context, input *slack.GetConversationInfoInput) (*slack.Channel, error)
}

// Channel identifies the channel alerts are posted to.
type Channel struct {
	ID   string
	Name string
}
