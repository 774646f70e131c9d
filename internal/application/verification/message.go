package verification

import (
	"bytes"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/go-verify-mail/internal/domain"
)

const subject = "Verify your account"

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`Welcome to InfiniteChess.org!

Thank you, {{.Username}}, for creating an account. Please verify your account by visiting the following link:

{{.URL}}

If the link doesn't work, you can copy and paste the URL into your browser.

If this wasn't you, please ignore this email.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto; border: 1px solid #999; border-radius: 5px;">
    <h2 style="color: #333;">Welcome to InfiniteChess.org!</h2>
    <p style="font-size: 16px; color: #555;">Thank you, <strong>{{.Username}}</strong>, for creating an account. Please click the button below to verify your account:</p>
    <a href="{{.URL}}" style="font-size: 16px; background-color: #fff; color: black; padding: 10px 20px; text-decoration: none; border: 1px solid black; border-radius: 6px; display: inline-block; margin: 20px 0;">Verify Account</a>
    <p style="font-size: 16px; color: #555;">If the link doesn't work, you can copy and paste the following URL into your browser:</p>
    <p style="font-size: 14px; color: #666; word-wrap: break-word;"><a href="{{.URL}}" style="color: #007BFF; text-decoration: underline;">{{.URL}}</a></p>
    <p style="font-size: 16px; color: #777;">If this wasn't you, please ignore this email or reply to let us know.</p>
</div>
`))

type messageData struct {
	Username string
	URL      string
}

// VerificationURL returns https://<host>/verify/<lowercased username>/<code>.
func VerificationURL(host, username, code string) string {
	lower := strings.ToLower(username)
	u := url.URL{
		Scheme:  "https",
		Host:    host,
		Path:    "/verify/" + lower + "/" + code,
		RawPath: "/verify/" + url.PathEscape(lower) + "/" + url.PathEscape(code),
	}
	return u.String()
}

// NewMessage renders the verification email for m pointing at link.
func NewMessage(from string, m *domain.Member, link string) (domain.Message, error) {
	data := messageData{Username: m.Username, URL: link}

	var text, html bytes.Buffer
	if err := textBody.Execute(&text, data); err != nil {
		return domain.Message{}, err
	}
	if err := htmlBody.Execute(&html, data); err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		From:    from,
		To:      m.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
