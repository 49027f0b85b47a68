package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/CRaLFa/nikkei-bot/internal/types"
)

// NotificationData is the input to the email templates.
type NotificationData struct {
	Entry   types.Entry
	Summary []string
}

// RenderedMessage is a subject plus plain text and HTML bodies.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	subject := fmt.Sprintf("開示: %s (%s) - %s", data.Entry.CompanyName, data.Entry.StockCode, data.Entry.Title)

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderPlainText(data NotificationData) string {
	e := data.Entry
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s (%s) - %s\n", e.CompanyName, e.StockCode, e.Title))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	sb.WriteString(fmt.Sprintf("Time: %s\n", e.Time))
	sb.WriteString(fmt.Sprintf("URL: %s\n", e.PageURL))
	if e.FileURL != "" {
		sb.WriteString(fmt.Sprintf("Document: %s\n", e.FileURL))
	}
	sb.WriteString("\n")

	if len(data.Summary) > 0 {
		sb.WriteString("AI SUMMARY\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, s := range data.Summary {
			sb.WriteString(fmt.Sprintf("• %s\n", s))
		}
	}

	return sb.String()
}
