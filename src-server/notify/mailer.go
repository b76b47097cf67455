package notify

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"sam/src-server/model"

	"github.com/wneessen/go-mail"
)

const emailTimeFormat = "Mon, 02 Jan 2006 15:04 MST"

var invitationTmpl = template.Must(template.New("invitation").Parse(`<html><body>
<p>You are invited to <b>{{.Title}}</b>.</p>
<ul>
<li>Starts: {{.Start}}</li>
<li>Ends: {{.End}}</li>
{{if .MeetLink}}<li>Join: <a href="{{.MeetLink}}">{{.MeetLink}}</a></li>{{end}}
{{if .Organizer}}<li>Organized by: {{.Organizer}}</li>{{end}}
</ul>
<p>A calendar invitation is attached.</p>
</body></html>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<html><body>
<p>Reminder: <b>{{.Title}}</b> starts at {{.Start}}.</p>
{{if .MeetLink}}<p>Join: <a href="{{.MeetLink}}">{{.MeetLink}}</a></p>{{end}}
</body></html>`))

type emailData struct {
	Title     string
	Start     string
	End       string
	MeetLink  string
	Organizer string
}

// Mailer sends meeting emails over SMTP. A nil *Mailer is a valid
// no-op sender so callers don't have to branch on whether email is
// configured.
type Mailer struct {
	client       *mail.Client
	senderEmail  string
	icsOutputDir string
}

func NewMailer(host string, port int, senderEmail, senderPassword, icsOutputDir string) (*Mailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(senderEmail),
		mail.WithPassword(senderPassword),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("NewMailer: %w", err)
	}
	return &Mailer{
		client:       client,
		senderEmail:  senderEmail,
		icsOutputDir: icsOutputDir,
	}, nil
}

// SendInvitation emails every participant of the meeting an HTML
// invitation with the ICS file attached.
func (m *Mailer) SendInvitation(ctx context.Context, meeting model.Meeting) error {
	if m == nil {
		return nil
	}
	if len(meeting.Participants) == 0 {
		return nil
	}

	icsPath, err := GenerateICS(meeting, m.icsOutputDir)
	if err != nil {
		return fmt.Errorf("Mailer.SendInvitation: %w", err)
	}
	defer os.Remove(icsPath)

	body, err := renderBody(invitationTmpl, meeting)
	if err != nil {
		return fmt.Errorf("Mailer.SendInvitation: %w", err)
	}

	msgs := make([]*mail.Msg, 0, len(meeting.Participants))
	for _, participant := range meeting.Participants {
		msg := mail.NewMsg()
		if err := msg.From(m.senderEmail); err != nil {
			return fmt.Errorf("Mailer.SendInvitation: bad sender: %w", err)
		}
		if err := msg.To(participant.Email); err != nil {
			return fmt.Errorf("Mailer.SendInvitation: bad recipient %q: %w", participant.Email, err)
		}
		msg.Subject("Invitation: " + meeting.Title)
		msg.SetBodyString(mail.TypeTextHTML, body)
		msg.AttachFile(icsPath)
		msgs = append(msgs, msg)
	}

	if err := m.client.DialAndSendWithContext(ctx, msgs...); err != nil {
		return fmt.Errorf("Mailer.SendInvitation: %w", err)
	}
	return nil
}

// SendReminder emails every participant a short heads-up that the
// meeting is about to start. No attachment.
func (m *Mailer) SendReminder(ctx context.Context, meeting model.Meeting) error {
	if m == nil {
		return nil
	}
	if len(meeting.Participants) == 0 {
		return nil
	}

	body, err := renderBody(reminderTmpl, meeting)
	if err != nil {
		return fmt.Errorf("Mailer.SendReminder: %w", err)
	}

	msgs := make([]*mail.Msg, 0, len(meeting.Participants))
	for _, participant := range meeting.Participants {
		msg := mail.NewMsg()
		if err := msg.From(m.senderEmail); err != nil {
			return fmt.Errorf("Mailer.SendReminder: bad sender: %w", err)
		}
		if err := msg.To(participant.Email); err != nil {
			return fmt.Errorf("Mailer.SendReminder: bad recipient %q: %w", participant.Email, err)
		}
		msg.Subject("Starting soon: " + meeting.Title)
		msg.SetBodyString(mail.TypeTextHTML, body)
		msgs = append(msgs, msg)
	}

	if err := m.client.DialAndSendWithContext(ctx, msgs...); err != nil {
		return fmt.Errorf("Mailer.SendReminder: %w", err)
	}
	return nil
}

// SendDirect emails one recipient directly, outside of any meeting.
func (m *Mailer) SendDirect(ctx context.Context, toEmail, subject, htmlBody string) error {
	if m == nil {
		return nil
	}
	msg := mail.NewMsg()
	if err := msg.From(m.senderEmail); err != nil {
		return fmt.Errorf("Mailer.SendDirect: bad sender: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("Mailer.SendDirect: bad recipient %q: %w", toEmail, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("Mailer.SendDirect: %w", err)
	}
	return nil
}

func renderBody(tmpl *template.Template, meeting model.Meeting) (string, error) {
	var sb strings.Builder
	data := emailData{
		Title:     meeting.Title,
		Start:     meeting.StartTime().Format(emailTimeFormat),
		End:       meeting.EndTime().Format(emailTimeFormat),
		MeetLink:  meeting.MeetLink,
		Organizer: meeting.OrganizerEmail,
	}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatTimeForEmail is exposed for callers composing their own bodies
// via SendDirect.
func FormatTimeForEmail(t time.Time) string {
	return t.Format(emailTimeFormat)
}
