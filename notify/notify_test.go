package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"firebase.google.com/go/v4/messaging"
	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/config"
	"sitecrew/model"
)

func TestChatPostsWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChat(config.ChatEnv{WebhookURL: srv.URL, Channel: "#site-ops"})
	err := c.Notify(context.Background(), Message{
		Title: "Tasks assigned",
		Body:  "Alice was assigned 2 tasks on Main St",
		Data:  map[string]string{"worker_id": "u1", "project_id": "p1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "#site-ops", got["channel"])
	assert.Contains(t, got["text"], "Tasks assigned")

	attachments := got["attachments"].([]any)
	fields := attachments[0].(map[string]any)["fields"].([]any)
	assert.Equal(t, "project_id", fields[0].(map[string]any)["title"])
}

func TestChatFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewChat(config.ChatEnv{WebhookURL: srv.URL}).Notify(context.Background(), Message{Title: "x"})
	assert.True(t, apperr.Is(err, apperr.Notification))
}

func TestMultiJoinsErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int32
	ok := Func(func(context.Context, Message) error { calls.Add(1); return nil })
	boom := Func(func(context.Context, Message) error { calls.Add(1); return errors.New("boom") })

	err := Multi{ok, boom, ok}.Notify(context.Background(), Message{Title: "t"})
	assert.EqualValues(t, 3, calls.Load())
	assert.True(t, apperr.Is(err, apperr.Notification))
	assert.ErrorContains(t, err, "boom")

	assert.NoError(t, Multi{ok, Nop{}}.Notify(context.Background(), Message{}))
	assert.NoError(t, Multi{}.Notify(context.Background(), Message{}))
}

type fakeUsers []model.User

func (f fakeUsers) UsersByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, u := range f {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeTokens map[string][]string

func (f fakeTokens) Tokens(_ context.Context, emails []string) ([]string, error) {
	var out []string
	for _, e := range emails {
		out = append(out, f[e]...)
	}
	return out, nil
}

type fakeSender struct {
	mu      sync.Mutex
	batches [][]string
	reject  bool
}

func (f *fakeSender) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, m.Tokens)
	resp := &messaging.BatchResponse{}
	for range m.Tokens {
		if f.reject {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: errors.New("unregistered")})
		} else {
			resp.SuccessCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true})
		}
	}
	return resp, nil
}

func TestFCMBatches(t *testing.T) {
	u := model.User{Email: "alice@crew.test"}
	u.ID = "u1"
	tokens := make([]string, 1200)
	for i := range tokens {
		tokens[i] = "tok"
	}
	sender := &fakeSender{}
	f := NewFCM(fakeUsers{u}, fakeTokens{"alice@crew.test": tokens}, sender, zap.NewNop())

	require.NoError(t, f.Notify(context.Background(), Message{Title: "t", Recipients: []string{"u1"}}))
	require.Len(t, sender.batches, 3)
	assert.Len(t, sender.batches[0], 500)
	assert.Len(t, sender.batches[2], 200)

	sender = &fakeSender{reject: true}
	f = NewFCM(fakeUsers{u}, fakeTokens{"alice@crew.test": {"a"}}, sender, zap.NewNop())
	err := f.Notify(context.Background(), Message{Title: "t", Recipients: []string{"u1"}})
	assert.True(t, apperr.Is(err, apperr.Notification))

	assert.NoError(t, f.Notify(context.Background(), Message{Title: "nobody"}))
}

type fakeSubs struct {
	subs    []model.PushSubscription
	deleted []string
}

func (f *fakeSubs) PushSubscriptionsFor(context.Context, []string) ([]model.PushSubscription, error) {
	return f.subs, nil
}

func (f *fakeSubs) DeletePushSubscription(_ context.Context, endpoint string) error {
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func TestWebPushRemovesGoneSubscriptions(t *testing.T) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer live.Close()

	keys := func(endpoint string) model.PushSubscription {
		return model.PushSubscription{
			UserID:    "u1",
			Endpoint:  endpoint,
			P256dhKey: "BNNL5ZaTfK81qhXOx23-wewhigUeFb632jN6LvRWCFH1ubQr77FE_9qV1FuojuRmHP42zmf34rXgW80OvUVDgTk",
			AuthKey:   "zqbxT6JKstKSY9JKibZLSQ",
		}
	}
	subs := &fakeSubs{subs: []model.PushSubscription{keys(gone.URL + "/a"), keys(live.URL + "/b")}}
	w := NewWebPush(config.WebPushEnv{VAPIDPublicKey: pub, VAPIDPrivateKey: priv, VAPIDContact: "ops@crew.test"}, subs, zap.NewNop())

	require.NoError(t, w.Notify(context.Background(), Message{Title: "t", Recipients: []string{"u1"}}))
	assert.Equal(t, []string{gone.URL + "/a"}, subs.deleted)
}
