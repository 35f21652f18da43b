package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
	channel  string
	appURL   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for safety alerts",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("SITELOG_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID that receives safety alerts",
			Category:    "Slack",
			Destination: &x.channel,
			Sources:     cli.EnvVars("SITELOG_SLACK_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public URL of this console, used for links in alerts",
			Category:    "Slack",
			Destination: &x.appURL,
			Sources:     cli.EnvVars("SITELOG_BASE_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
		slog.String("base-url", x.appURL),
	)
}

// IsConfigured reports whether safety alerts can be sent.
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channel != ""
}

// Configure returns the notifier, or nil when Slack is not configured.
func (x *Slack) Configure() (*slack.Notifier, error) {
	if x.botToken == "" && x.channel == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrMissingRequired, "--slack-bot-token and --slack-channel must be set together")
	}

	var opts []slack.Option
	if x.appURL != "" {
		opts = append(opts, slack.WithAppURL(x.appURL))
	}
	n, err := slack.New(x.botToken, x.channel, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack notifier")
	}
	return n, nil
}
