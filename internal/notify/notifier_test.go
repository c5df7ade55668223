package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcehub/internal/model"
	"announcehub/pkg/async"
	"announcehub/pkg/logger"
)

// recorder 记录收到的HTTP请求
type recorder struct {
	mu       sync.Mutex
	bodies   [][]byte
	headers  []http.Header
	status   int
	requests int
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.requests++
		r.bodies = append(r.bodies, body)
		r.headers = append(r.headers, req.Header.Clone())
		status := r.status
		r.mu.Unlock()
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeMailer struct {
	mu       sync.Mutex
	approved []string
	rejected []string
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) SendApproved(to, _, _ string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved = append(m.approved, to)
	return nil
}

func (m *fakeMailer) SendRejected(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, to)
	return nil
}

func strPtr(s string) *string { return &s }

func sampleApplication() model.Application {
	return model.Application{
		Content: model.Content{
			Title:       "Open day",
			Description: strPtr("Come visit"),
			ImgURL:      strPtr("https://img.example.com/a.png"),
			Tag:         []string{},
		},
		ApplicationID: "abc123",
		Applicant:     "user@example.com",
		FCM:           strPtr("device-1"),
	}
}

func TestNotifier_ApplicationSubmitted(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	worker := async.NewWorker(10, logger.NewNop())
	worker.Start(1)

	n := NewNotifier(worker, NewDiscordSender(srv.URL, srv.Client(), logger.NewNop()), nil, nil, logger.NewNop())
	n.ApplicationSubmitted(sampleApplication())
	worker.Stop()

	require.Len(t, rec.bodies, 1)
	var payload DiscordWebhookPayload
	require.NoError(t, json.Unmarshal(rec.bodies[0], &payload))
	assert.Equal(t, "New application, \nabc123\n Open day", payload.Content)
	require.Len(t, payload.Embeds, 1)
	assert.Contains(t, payload.Embeds[0].Description, "Title: **Open day**")
	assert.Contains(t, payload.Embeds[0].Description, "applicant: user@example.com")
	require.NotNil(t, payload.Embeds[0].Image)
	assert.Equal(t, "https://img.example.com/a.png", payload.Embeds[0].Image.URL)
}

func TestNotifier_ApplicationReviewed(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	worker := async.NewWorker(10, logger.NewNop())
	worker.Start(1)
	mailer := &fakeMailer{}

	n := NewNotifier(worker, nil, NewFCMSender(srv.URL, "server-key", srv.Client(), logger.NewNop()), mailer, logger.NewNop())

	app := sampleApplication()
	approved := true
	app.ReviewStatus = &approved
	n.ApplicationReviewed(app, 4)
	worker.Stop()

	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "key=server-key", rec.headers[0].Get("Authorization"))
	var msg fcmMessage
	require.NoError(t, json.Unmarshal(rec.bodies[0], &msg))
	assert.Equal(t, "device-1", msg.To)
	assert.Equal(t, "Application approved", msg.Notification.Title)
	assert.Equal(t, "Open day (announcement #4)", msg.Notification.Body)

	assert.Equal(t, []string{"user@example.com"}, mailer.approved)
	assert.Empty(t, mailer.rejected)
}

func TestNotifier_SkipsUnconfiguredAndNonEmail(t *testing.T) {
	worker := async.NewWorker(10, logger.NewNop())
	worker.Start(1)
	mailer := &fakeMailer{}
	n := NewNotifier(worker, nil, nil, mailer, logger.NewNop())

	app := sampleApplication()
	app.Applicant = "plainuser1"
	rejected := false
	app.ReviewStatus = &rejected
	n.ApplicationSubmitted(app)
	n.ApplicationReviewed(app, 0)
	worker.Stop()

	assert.Empty(t, mailer.approved)
	assert.Empty(t, mailer.rejected)
}

func TestNotifier_FullQueueDoesNotBlock(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	// 工作器未启动，队列容量为1
	worker := async.NewWorker(1, logger.NewNop())
	n := NewNotifier(worker, NewDiscordSender(srv.URL, srv.Client(), logger.NewNop()), nil, nil, logger.NewNop())

	for i := 0; i < 5; i++ {
		n.ApplicationSubmitted(sampleApplication())
	}

	worker.Start(1)
	worker.Stop()
	assert.Equal(t, 1, rec.requests)
}

func TestJSONPoster_BreakerOpens(t *testing.T) {
	rec := &recorder{status: http.StatusInternalServerError}
	srv := rec.server(t)
	sender := NewDiscordSender(srv.URL, srv.Client(), logger.NewNop())

	for i := 0; i < breakerFailureThreshold; i++ {
		assert.Error(t, sender.SendApplication(context.Background(), sampleApplication()))
	}
	err := sender.SendApplication(context.Background(), sampleApplication())
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, breakerFailureThreshold, rec.requests)
}

func TestReviewMessage(t *testing.T) {
	app := sampleApplication()
	rejected := false
	app.ReviewStatus = &rejected
	app.ReviewDescription = strPtr("missing date")

	title, body := reviewMessage(app, 0)
	assert.Equal(t, "Application rejected", title)
	assert.Equal(t, "Open day: missing date", body)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, isEmail("user@example.com"))
	assert.False(t, isEmail("plainuser1"))
	assert.False(t, isEmail("Name <user@example.com>"))
}
