package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatSender struct {
	sent map[int64]string
	fail map[int64]bool
}

func (f *fakeChatSender) SendText(ctx context.Context, chatID int64, text string) error {
	if f.fail[chatID] {
		return errors.New("chat not found")
	}
	if f.sent == nil {
		f.sent = make(map[int64]string)
	}
	f.sent[chatID] = text
	return nil
}

type recordingSink struct {
	name string
	err  error
	got  []string
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(ctx context.Context, text string) error {
	s.got = append(s.got, text)
	return s.err
}

func TestTelegramSink_PublishesToEveryChat(t *testing.T) {
	sender := &fakeChatSender{fail: map[int64]bool{2: true}}
	sink := NewTelegramSink(sender, []int64{1, 2, 3})

	err := sink.Publish(context.Background(), "Game day")
	require.Error(t, err, "failed chat should be reported")
	assert.Contains(t, err.Error(), "chat 2")

	assert.Equal(t, "Game day", sender.sent[1])
	assert.Equal(t, "Game day", sender.sent[3], "a failing chat does not stop the others")
}

func TestSlackSink_PostsWebhook(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewSlackSink(server.URL).Publish(context.Background(), "Phillies vs. Mets 7:05 PM")
	require.NoError(t, err)
	assert.Equal(t, "Phillies vs. Mets 7:05 PM", body["text"])
}

func TestSlackSink_ReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewSlackSink(server.URL).Publish(context.Background(), "hello")
	assert.Error(t, err)
}

func TestFanout(t *testing.T) {
	ok := &recordingSink{name: "ok"}
	bad := &recordingSink{name: "bad", err: errors.New("boom")}
	f := NewFanout(ok, nil, bad)

	assert.Equal(t, 2, f.Len(), "nil sinks are skipped")

	err := f.Publish(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Equal(t, []string{"text"}, ok.got)
	assert.Equal(t, []string{"text"}, bad.got)
}
