package slack

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/domain/types"
	"github.com/slack-go/slack"
)

const (
	// maxHeaderBytes is the Slack limit for plain text in a header block.
	maxHeaderBytes = 150
	// maxSectionBytes is the Slack limit for text in a section block.
	maxSectionBytes = 3000
)

func priorityEmoji(p types.Priority) string {
	switch p {
	case types.PriorityCritical:
		return "🚨"
	case types.PriorityHigh:
		return "⚠️"
	default:
		return "🦺"
	}
}

// buildSafetyAlert renders the Block Kit message and its notification fallback text.
func buildSafetyAlert(site *model.SiteSettings, log *model.Log, appURL string) ([]slack.Block, string) {
	header := truncateToMaxBytes(priorityEmoji(log.Priority)+" Safety alert: "+log.Title, maxHeaderBytes)
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, header, true, false),
		),
	}

	if log.Description != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(log.Description, maxSectionBytes), false, false),
			nil, nil,
		))
	}

	fields := []*slack.TextBlockObject{
		field("Priority", log.Priority.Label()),
		field("Status", log.Status.Label()),
	}
	if log.Category != "" {
		fields = append(fields, field("Category", log.Category.Label()))
	}
	if log.Location != "" {
		fields = append(fields, field("Location", log.Location))
	}
	if log.Inspector != "" {
		fields = append(fields, field("Inspector", log.Inspector))
	}
	if log.Date != "" {
		fields = append(fields, field("Date", model.DatePart(log.Date)))
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	contextParts := []string{}
	if site != nil {
		if site.General.SiteName != "" {
			contextParts = append(contextParts, "Site: "+site.General.SiteName)
		}
		if site.Safety.SafetyOfficer != "" {
			contextParts = append(contextParts, "Safety officer: "+site.Safety.SafetyOfficer)
		}
		if site.Safety.EmergencyContact != "" {
			contextParts = append(contextParts, "Emergency: "+site.Safety.EmergencyContact)
		}
	}
	if appURL != "" && log.ID != "" {
		contextParts = append(contextParts, fmt.Sprintf("<%s|View log>", logURL(appURL, log.ID)))
	}
	if len(contextParts) > 0 {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(contextParts, "  |  "), false, false),
		))
	}

	fallback := fmt.Sprintf("Safety alert (%s): %s", log.Priority.Label(), log.Title)
	return blocks, fallback
}

func field(name, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, "*"+name+"*\n"+value, false, false)
}

func logURL(appURL, id string) string {
	return strings.TrimRight(appURL, "/") + "/logs/" + url.PathEscape(id)
}

// truncateToMaxBytes cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncateToMaxBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "..."
	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
