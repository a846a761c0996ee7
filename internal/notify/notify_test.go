package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []Message
	err     error
	release chan struct{}
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func TestQueueDeliversAndDrains(t *testing.T) {
	sender := &fakeSender{}
	q := NewQueue(sender, zap.NewNop(), nil, 10, 2)
	q.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.True(t, q.Submit(WelcomeMessage("ada@x.com")))
	}

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Len(t, sender.messages(), 5)
}

func TestQueueSubmitNeverBlocks(t *testing.T) {
	sender := &fakeSender{release: make(chan struct{})}
	q := NewQueue(sender, zap.NewNop(), nil, 1, 1)
	q.Start(context.Background())

	// The worker holds one message and the buffer holds another.
	require.True(t, q.Submit(WelcomeMessage("a@x.com")))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, q.Submit(WelcomeMessage("b@x.com")))

	done := make(chan bool, 1)
	go func() { done <- q.Submit(WelcomeMessage("c@x.com")) }()

	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(sender.release)
	require.NoError(t, q.Shutdown(context.Background()))
	assert.Len(t, sender.messages(), 2)
}

func TestQueueSendFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	q := NewQueue(sender, zap.NewNop(), nil, 4, 1)
	q.Start(context.Background())

	assert.True(t, q.Submit(WelcomeMessage("ada@x.com")))
	require.NoError(t, q.Shutdown(context.Background()))
	assert.Len(t, sender.messages(), 1)
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewQueue(&fakeSender{}, zap.NewNop(), nil, 4, 1)
	q.Start(context.Background())
	require.NoError(t, q.Shutdown(context.Background()))

	assert.False(t, q.Submit(WelcomeMessage("ada@x.com")))
	assert.NoError(t, q.Shutdown(context.Background()))
}

func TestQueueShutdownHonoursContext(t *testing.T) {
	sender := &fakeSender{release: make(chan struct{})}
	defer close(sender.release)

	q := NewQueue(sender, zap.NewNop(), nil, 4, 1)
	q.Start(context.Background())
	require.True(t, q.Submit(WelcomeMessage("ada@x.com")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)
}

func TestConfirmationURL(t *testing.T) {
	assert.Equal(t,
		"https://app.example.com/confirmation/abc-123?code=004217",
		ConfirmationURL("https://app.example.com/", "abc-123", "004217"),
	)
}

func TestMessageBuilders(t *testing.T) {
	url := ConfirmationURL("http://localhost:3001", "tok", "123456")
	msg := ConfirmationMessage("Ada", "ada@x.com", url)

	assert.Equal(t, []string{"ada@x.com"}, msg.To)
	assert.Equal(t, "Confirm your account", msg.Subject)
	assert.Equal(t, KindConfirmation, msg.Kind)
	assert.True(t, strings.HasPrefix(msg.Text, "Hey Ada, Please confirm your account"))
	assert.Contains(t, msg.Text, url)

	welcome := WelcomeMessage("ada@x.com")
	assert.Equal(t, KindWelcome, welcome.Kind)
	assert.Equal(t, "Account has been confirmed.", welcome.Text)
}

func TestSMTPSenderCompose(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "onboarding@example.com")
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	raw := string(s.compose(Message{
		To:      []string{"ada@x.com", "bob@x.com"},
		Subject: "Hello",
		Text:    "line one\nline two",
	}))

	assert.Equal(t, "smtp.example.com:587", s.addr)
	assert.Nil(t, s.auth)
	assert.Contains(t, raw, "From: onboarding@example.com\r\n")
	assert.Contains(t, raw, "To: ada@x.com, bob@x.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPSenderRequiresRecipients(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass", "onboarding@example.com")
	assert.NotNil(t, s.auth)
	assert.Error(t, s.Send(context.Background(), Message{Subject: "Hello"}))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(zap.NewNop()).Send(context.Background(), WelcomeMessage("ada@x.com")))
}
