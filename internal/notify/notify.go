// Package notify fans out the weekly timesheet reminder over email and Slack.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/url"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const sendTimeout = 15 * time.Second

// sender abstracts the shoutrrr delivery so tests can capture outgoing
// messages instead of opening SMTP connections.
type sender func(serviceURL, title, body string) error

// EmailFailure records one recipient whose reminder email could not be sent.
type EmailFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// ReminderReport summarizes a fan-out run. Per-recipient failures are
// collected here instead of aborting the batch.
type ReminderReport struct {
	Emailed       int            `json:"emailed"`
	EmailFailures []EmailFailure `json:"emailFailures,omitempty"`
	SlackSent     bool           `json:"slackSent"`
	SlackError    string         `json:"slackError,omitempty"`
}

// Notifier sends the weekly reminder to staff by email, plus one message to
// the team Slack channel.
type Notifier struct {
	smtp   conf.SMTPSettings
	slack  conf.SlackSettings
	send   sender
	now    func() time.Time
	logger *slog.Logger
}

// New creates a reminder notifier from the mail and chat settings. Either
// channel may be left unconfigured and is then skipped.
func New(smtp *conf.SMTPSettings, slack *conf.SlackSettings) *Notifier {
	return &Notifier{
		smtp:   *smtp,
		slack:  *slack,
		send:   shoutrrrSend,
		now:    time.Now,
		logger: logging.ForService("notify"),
	}
}

// shoutrrrSend delivers one message through a fresh shoutrrr router.
func shoutrrrSend(serviceURL, title, body string) error {
	router, err := shoutrrr.CreateSender(serviceURL)
	if err != nil {
		return err
	}
	router.Timeout = sendTimeout
	router.SetLogger(log.New(io.Discard, "", 0))

	params := stypes.Params{}
	if title != "" {
		params.SetTitle(title)
	}
	for _, sendErr := range router.Send(body, &params) {
		if sendErr != nil {
			return sendErr
		}
	}
	return nil
}

// SendReminders emails every employee with an address and posts a single
// channel message. Email failures are collected per recipient; only a fully
// unconfigured notifier is an error.
func (n *Notifier) SendReminders(ctx context.Context, employees []timesheet.StaffProfile) (*ReminderReport, error) {
	if n.smtp.Host == "" && n.slack.BotToken == "" {
		return nil, errors.Newf("no reminder channel configured").
			Category(errors.CategoryConfiguration).
			Component("notify").
			Build()
	}

	weekStart, weekEnd := reminderWeek(n.now())
	report := &ReminderReport{}

	if n.smtp.Host != "" {
		for i := range employees {
			emp := &employees[i]
			if emp.Email == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return report, errors.New(err).
					Category(errors.CategoryTimeout).
					Component("notify").
					Build()
			}

			title, body := reminderMessage(emp, weekStart, weekEnd)
			if err := n.send(n.smtpURL(emp.Email), title, body); err != nil {
				n.logger.Warn("reminder email failed",
					"email", emp.Email,
					"error", err)
				report.EmailFailures = append(report.EmailFailures, EmailFailure{
					Email: emp.Email,
					Error: err.Error(),
				})
				continue
			}
			report.Emailed++
		}
	}

	if n.slack.BotToken != "" && n.slack.ChannelID != "" {
		title, body := channelMessage(weekStart, weekEnd)
		if err := n.send(n.slackURL(), title, body); err != nil {
			n.logger.Warn("slack reminder failed", "error", err)
			report.SlackError = err.Error()
		} else {
			report.SlackSent = true
		}
	}

	n.logger.Info("reminder fan-out finished",
		"emailed", report.Emailed,
		"email_failures", len(report.EmailFailures),
		"slack_sent", report.SlackSent)
	return report, nil
}

// smtpURL builds the per-recipient shoutrrr SMTP service URL.
func (n *Notifier) smtpURL(recipient string) string {
	query := url.Values{
		"from":        {n.smtp.From},
		"to":          {recipient},
		"useStartTLS": {"yes"},
	}
	return fmt.Sprintf("smtp://%s:%s@%s:%d/?%s",
		url.QueryEscape(n.smtp.Username),
		url.QueryEscape(n.smtp.Password),
		n.smtp.Host,
		n.smtp.Port,
		query.Encode())
}

// slackURL builds the shoutrrr Slack bot-API service URL.
func (n *Notifier) slackURL() string {
	return fmt.Sprintf("slack://xoxb:%s@%s", n.slack.BotToken, n.slack.ChannelID)
}

// reminderWeek returns Monday and Friday of the week containing now.
func reminderWeek(now time.Time) (start, end time.Time) {
	offset := int(now.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	start = now.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 4)
	return start, end
}

// reminderMessage renders the personal email reminder.
func reminderMessage(emp *timesheet.StaffProfile, weekStart, weekEnd time.Time) (title, body string) {
	name := emp.Nickname
	if name == "" {
		name = emp.FirstName
	}
	title = "Timesheet reminder: week of " + weekStart.Format("Jan 2")
	body = fmt.Sprintf(
		"Hi %s,\n\nFriendly reminder to fill in your timesheet for %s to %s before the end of the day.\n\nThanks!",
		name,
		weekStart.Format("Monday 2 Jan"),
		weekEnd.Format("Friday 2 Jan"))
	return title, body
}

// channelMessage renders the single team-wide Slack reminder.
func channelMessage(weekStart, weekEnd time.Time) (title, body string) {
	title = "Timesheet reminder"
	body = fmt.Sprintf(
		"It's Friday! Please make sure your timesheets for %s to %s are filled in before you log off.",
		weekStart.Format("Mon 2 Jan"),
		weekEnd.Format("Fri 2 Jan"))
	return title, body
}
