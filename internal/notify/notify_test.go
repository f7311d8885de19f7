package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPNotifierSend(t *testing.T) {
	d := &fakeDialer{}
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "alerts@example.com"})
	n.dialer = d

	err := n.Send(context.Background(), "ops@example.com", "Weather Alert for Delhi", "hot")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"alerts@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Weather Alert for Delhi"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hot")
}

func TestSMTPNotifierWrapsError(t *testing.T) {
	cause := errors.New("connection refused")
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "alerts@example.com"})
	n.dialer = &fakeDialer{err: cause}

	err := n.Send(context.Background(), "ops@example.com", "s", "b")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ops@example.com")
}

func TestSMTPNotifierHonoursDeadline(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "alerts@example.com"})
	n.dialer = &fakeDialer{delay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Send(ctx, "ops@example.com", "s", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSMTPConfigEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{Host: "smtp.example.com"}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.example.com", From: "a@example.com"}.Enabled())
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zap.NewNop().Sugar())
	assert.NoError(t, n.Send(context.Background(), "ops@example.com", "s", "b"))
}
