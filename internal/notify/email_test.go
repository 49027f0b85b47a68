package notify

import (
	"testing"

	"github.com/CRaLFa/nikkei-bot/internal/attachment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLEmailRenderer(t *testing.T) {
	r := NewHTMLEmailRenderer()

	msg, err := r.Render(NotificationData{
		Entry:   sampleEntry("業績予想の修正"),
		Summary: []string{"上方修正"},
	})
	require.NoError(t, err)

	assert.Equal(t, "開示: トヨタ自動車 (7203) - 業績予想の修正", msg.Subject)
	assert.Contains(t, msg.HTML, "https://example.com/doc.pdf")
	assert.Contains(t, msg.HTML, "<li>上方修正</li>")
	assert.Contains(t, msg.Text, "• 上方修正")
	assert.Contains(t, msg.Text, "Document: https://example.com/doc.pdf")
}

func TestEmailConfigEnabled(t *testing.T) {
	assert.False(t, EmailConfig{}.Enabled())
	assert.True(t, EmailConfig{SMTPServer: "smtp", SMTPUser: "u", SMTPPass: "p", ToEmail: "t"}.Enabled())
}

func TestEmailBuild(t *testing.T) {
	d := NewEmailDestination(EmailConfig{SMTPServer: "smtp", SMTPPort: 587, SMTPUser: "bot@example.com", SMTPPass: "p", ToEmail: "me@example.com"})

	m, err := d.build(&Message{
		Entry:      sampleEntry("A"),
		Attachment: &attachment.File{Name: "doc.png", ContentType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bot@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"me@example.com"}, m.GetHeader("To"))
	assert.Equal(t, "email", d.Name())
}
