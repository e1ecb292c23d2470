package mailbox

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// LeadEmail is one unread message pulled from the shared lead inbox.
type LeadEmail struct {
	MessageID string
	From      string
	FromName  string
	Subject   string
	Body      string
	Date      time.Time
}

// Client reads the shared lead mailbox over IMAP. Each FetchUnread call
// opens a fresh connection; the poller cadence is minutes, not seconds,
// so keeping a session alive buys nothing.
type Client struct {
	addr     string
	username string
	password string
}

func NewClient(server string, port int, username, password string) *Client {
	return &Client{
		addr:     fmt.Sprintf("%s:%d", server, port),
		username: username,
		password: password,
	}
}

// FetchUnread returns the unseen messages in INBOX and marks them seen,
// so the next poll only sees new arrivals.
func (c *Client) FetchUnread(limit int) ([]LeadEmail, error) {
	conn, err := client.DialTLS(c.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer conn.Logout()

	if err := conn.Login(c.username, c.password); err != nil {
		return nil, fmt.Errorf("imap login failed: %w", err)
	}

	if _, err := conn.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := conn.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}

	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqSet, items, messages)
	}()

	var emails []LeadEmail
	for msg := range messages {
		email, err := parseMessage(msg, section)
		if err != nil {
			log.Printf("[Mailbox] Skipping unparsable message %d: %v", msg.SeqNum, err)
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}

	// Mark everything we fetched as seen
	markItem := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := conn.Store(seqSet, markItem, []interface{}{imap.SeenFlag}, nil); err != nil {
		log.Printf("[Mailbox] Failed to mark messages seen: %v", err)
	}

	return emails, nil
}

func parseMessage(msg *imap.Message, section *imap.BodySectionName) (LeadEmail, error) {
	email := LeadEmail{}

	if msg.Envelope != nil {
		email.MessageID = msg.Envelope.MessageId
		email.Subject = msg.Envelope.Subject
		email.Date = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			from := msg.Envelope.From[0]
			email.From = from.MailboxName + "@" + from.HostName
			email.FromName = from.PersonalName
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return email, fmt.Errorf("message has no body section")
	}

	reader, err := mail.CreateReader(body)
	if err != nil {
		return email, fmt.Errorf("failed to parse message: %w", err)
	}

	var plain, html string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return email, fmt.Errorf("failed to read message part: %w", err)
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			plain = string(data)
		case "text/html":
			html = string(data)
		}
	}

	email.Body = plain
	if email.Body == "" {
		email.Body = stripTags(html)
	}
	return email, nil
}

// stripTags is a crude HTML-to-text fallback for leads that arrive as
// HTML-only mail. Portal lead emails are simple templates, so losing
// layout is fine.
func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
