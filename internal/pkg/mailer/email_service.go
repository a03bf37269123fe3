package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"support-chat-be/internal/entity"
)

type IEmailService interface {
	SendTranscript(toEmail string, room *entity.ChatRoom, messages []*entity.ChatMessage) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendTranscript mails the full conversation to the customer after a room
// is closed. Messages must already be in chronological order.
func (s *emailService) SendTranscript(toEmail string, room *entity.ChatRoom, messages []*entity.ChatMessage) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your support conversation transcript")

	var lines strings.Builder
	for _, msg := range messages {
		who := "You"
		if msg.SenderRole == entity.SenderRoleAgent {
			who = "Support"
		}
		lines.WriteString(fmt.Sprintf(
			`<p><strong>%s</strong> <span style="color: #999;">%s</span><br>%s</p>`,
			who,
			msg.CreatedAt.Format("2006-01-02 15:04"),
			html.EscapeString(msg.Body),
		))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Support conversation closed</h2>
			<p>Here is a copy of your conversation (ref %s):</p>
			%s
			<p>If you need anything else, just start a new conversation.</p>
		</div>
	`, room.Id, lines.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send transcript to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Transcript sent to %s\n", toEmail)
	return nil
}
