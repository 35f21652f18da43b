package slack

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// Notifier posts safety alerts for new logs to a single Slack channel.
type Notifier struct {
	api       api
	channelID string
	appURL    string

	mu      sync.RWMutex
	channel *Channel
}

var _ interfaces.Notifier = &Notifier{}

type config struct {
	apiURL string
	appURL string
}

// Option is a functional option for Notifier configuration
type Option func(*config)

// WithAPIURL points the client at a different Slack API endpoint. The URL must end with "/".
func WithAPIURL(url string) Option {
	return func(c *config) {
		c.apiURL = url
	}
}

// WithAppURL sets the public URL of this app so alerts can link to the log.
func WithAppURL(url string) Option {
	return func(c *config) {
		c.appURL = url
	}
}

// New creates a Notifier posting with the given bot token to channelID
func New(token, channelID string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var clientOpts []slack.Option
	if cfg.apiURL != "" {
		clientOpts = append(clientOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &Notifier{
		api:       slack.New(token, clientOpts...),
		channelID: channelID,
		appURL:    cfg.appURL,
	}, nil
}

// Channel resolves the configured channel, caching the result. It is used at
// startup to fail fast on a wrong channel ID or missing bot membership.
func (n *Notifier) Channel(ctx context.Context) (*Channel, error) {
	n.mu.RLock()
	if n.channel != nil {
		ch := *n.channel
		n.mu.RUnlock()
		return &ch, nil
	}
	n.mu.RUnlock()

	info, err := n.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: n.channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get Slack channel info", goerr.V("channel_id", n.channelID))
	}

	ch := &Channel{ID: info.ID, Name: info.Name}
	n.mu.Lock()
	n.channel = ch
	n.mu.Unlock()

	cp := *ch
	return &cp, nil
}

// NotifySafetyAlert posts an alert describing log for the given site.
func (n *Notifier) NotifySafetyAlert(ctx context.Context, site *model.SiteSettings, log *model.Log) error {
	blocks, fallback := buildSafetyAlert(site, log, n.appURL)

	_, ts, err := n.api.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post safety alert",
			goerr.V("channel_id", n.channelID),
			goerr.V("log_id", log.ID),
		)
	}

	logging.From(ctx).Info("safety alert posted",
		"channel_id", n.channelID,
		"log_id", log.ID,
		"ts", ts,
	)
	return nil
}
