package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcehub/pkg/logger"
)

type sentMail struct {
	to, subject, body string
}

func newTestService(t *testing.T) (*Service, *[]sentMail) {
	t.Helper()
	var sent []sentMail
	s := NewService(Config{Host: "smtp.example.com", From: "noreply@example.com"}, logger.NewNop())
	s.send = func(to, subject, body string) error {
		sent = append(sent, sentMail{to, subject, body})
		return nil
	}
	return s, &sent
}

func TestSendApproved(t *testing.T) {
	s, sent := newTestService(t)

	require.NoError(t, s.SendApproved("a@example.com", "Launch <day>", "welcome", 12))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "a@example.com", mail.to)
	assert.Equal(t, "Announcements - 申请已通过", mail.subject)
	assert.Contains(t, mail.body, "Launch &lt;day&gt;")
	assert.Contains(t, mail.body, "公告编号 12")
	assert.Contains(t, mail.body, "审核说明：welcome")
}

func TestSendRejected(t *testing.T) {
	s, sent := newTestService(t)

	require.NoError(t, s.SendRejected("a@example.com", "Draft", ""))
	require.Len(t, *sent, 1)
	assert.Equal(t, "Announcements - 申请未通过", (*sent)[0].subject)
	assert.NotContains(t, (*sent)[0].body, "审核说明")
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewService(Config{}, logger.NewNop()).Enabled())
	assert.True(t, NewService(Config{Host: "h", From: "f"}, logger.NewNop()).Enabled())
}

func TestUnknownTemplate(t *testing.T) {
	s, _ := newTestService(t)
	assert.Error(t, s.SendEmail(EmailType("missing"), EmailData{To: "x"}))
}
