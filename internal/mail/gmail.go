// Package mail fetches newsletter messages from Gmail and marks them
// processed after a successful run.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ryosukesatoh/newsletter-digest/internal/report"
)

const user = "me"

// Message is one raw newsletter email as fetched from the mail provider.
type Message struct {
	ID       string
	Subject  string
	From     string
	Date     time.Time
	BodyHTML string
	BodyText string
}

// Client wraps the Gmail API for fetching and marking newsletter messages.
type Client struct {
	srv            *gmail.Service
	allowedSenders []string
	reporter       report.Reporter
}

// NewClient authenticates against the Gmail API with an OAuth refresh token.
func NewClient(ctx context.Context, clientID, clientSecret, refreshToken string, allowedSenders []string, rep report.Reporter) (*Client, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
	httpClient := conf.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to create Gmail service: %w", err)
	}

	return &Client{srv: srv, allowedSenders: allowedSenders, reporter: rep}, nil
}

// FetchUnread returns unread messages from the last `hours` hours whose
// sender matches one of the configured allowed-sender patterns. A message
// that cannot be fetched individually is logged and skipped.
func (c *Client) FetchUnread(ctx context.Context, hours int) ([]Message, error) {
	after := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()
	query := fmt.Sprintf("is:unread after:%d", after)

	list, err := c.srv.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("mail: failed to list messages: %w", err)
	}
	if len(list.Messages) == 0 {
		return nil, nil
	}

	c.reporter.Debugf("Found %d unread messages, filtering by allowed senders", len(list.Messages))

	var msgs []Message
	for _, m := range list.Messages {
		full, err := c.srv.Users.Messages.Get(user, m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			c.reporter.Warnf("Failed to fetch message %s: %v", m.Id, err)
			continue
		}
		msg := parseMessage(full)
		if isAllowedSender(msg.From, c.allowedSenders) {
			msgs = append(msgs, msg)
		}
	}

	return msgs, nil
}

// MarkProcessed removes the UNREAD label from the given messages.
func (c *Client) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	req := &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		RemoveLabelIds: []string{"UNREAD"},
	}
	if err := c.srv.Users.Messages.BatchModify(user, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mail: failed to mark %d messages as read: %w", len(ids), err)
	}
	return nil
}

func parseMessage(m *gmail.Message) Message {
	msg := Message{ID: m.Id}
	if m.Payload == nil {
		return msg
	}

	msg.Subject = headerValue(m.Payload.Headers, "Subject")
	msg.From = headerValue(m.Payload.Headers, "From")
	if raw := headerValue(m.Payload.Headers, "Date"); raw != "" {
		if t, err := netmail.ParseDate(raw); err == nil {
			msg.Date = t
		}
	}

	msg.BodyHTML = partBody(m.Payload, "text/html")
	msg.BodyText = partBody(m.Payload, "text/plain")
	return msg
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// partBody finds the first body of the requested MIME type, searching
// nested multipart structures depth-first.
func partBody(payload *gmail.MessagePart, mimeType string) string {
	if payload == nil {
		return ""
	}
	if payload.MimeType == mimeType && payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	for _, part := range payload.Parts {
		if body := partBody(part, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data, which may arrive with or
// without padding.
func decodeBody(data string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

func isAllowedSender(from string, allowed []string) bool {
	fromLower := strings.ToLower(from)
	for _, a := range allowed {
		if strings.Contains(fromLower, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
