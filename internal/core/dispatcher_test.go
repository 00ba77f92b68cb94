package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/lexicon"
)

type fakeEmail struct {
	inbox     []core.EmailMessage
	listErr   error
	getErr    error
	sendErr   error
	sendCalls int
	sent      []core.Draft
	moved     []string
}

func (f *fakeEmail) ListInbox(ctx context.Context, max int) ([]core.EmailMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if max > 0 && max < len(f.inbox) {
		return f.inbox[:max], nil
	}
	return f.inbox, nil
}

func (f *fakeEmail) Get(ctx context.Context, id string) (*core.EmailMessage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, msg := range f.inbox {
		if msg.ID == id {
			m := msg
			return &m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeEmail) Move(ctx context.Context, id string, folder string) error {
	f.moved = append(f.moved, id)
	return nil
}

func (f *fakeEmail) Send(ctx context.Context, draft *core.Draft) error {
	f.sendCalls++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, *draft)
	return nil
}

type fakeWeather struct {
	report    *core.WeatherReport
	err       error
	lastCity  string
	callCount int
}

func (f *fakeWeather) Current(ctx context.Context, city string) (*core.WeatherReport, error) {
	f.lastCity = city
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeInterpreter struct {
	intent *core.Intent
	draft  string
	err    error
}

func (f *fakeInterpreter) Interpret(ctx context.Context, utt core.Utterance) (*core.Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func (f *fakeInterpreter) DraftReply(ctx context.Context, email *core.EmailMessage, lang core.Language) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.draft, nil
}

type fakeRepo struct {
	items []core.MemoryItem
}

func (f *fakeRepo) Add(ctx context.Context, item core.MemoryItem) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRepo) Recent(ctx context.Context, kind core.MemoryKind, n int) ([]core.MemoryItem, error) {
	var out []core.MemoryItem
	for i := len(f.items) - 1; i >= 0 && len(out) < n; i-- {
		if f.items[i].Kind == kind {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Cleanup(ctx context.Context, olderThan time.Duration) error { return nil }

func (f *fakeRepo) Snapshot(ctx context.Context) (core.MemorySnapshot, error) {
	conv, _ := f.Recent(ctx, core.MemoryConversation, 50)
	email, _ := f.Recent(ctx, core.MemoryEmailContext, 50)
	pref, _ := f.Recent(ctx, core.MemoryPreference, 50)
	return core.MemorySnapshot{Conversation: conv, EmailContext: email, Preference: pref}, nil
}

func (f *fakeRepo) countKind(kind core.MemoryKind) int {
	n := 0
	for _, item := range f.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func sampleInbox() []core.EmailMessage {
	return []core.EmailMessage{
		{ID: "msg-1", From: "sami@example.tn", Subject: "Meeting", Body: "See you at 10.", Unread: true},
		{ID: "msg-2", From: "fatma@example.tn", Subject: "Invoice", Body: "Attached.", Unread: false},
	}
}

func newDispatcher(email *fakeEmail, weather *fakeWeather, interp core.Interpreter, repo *fakeRepo) *core.Dispatcher {
	return core.NewDispatcher(email, weather, interp, fixedClock{time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)},
		repo, lexicon.Default(), time.Second, "Tunis", zap.NewNop())
}

func tnIntent(name core.IntentName, text string) *core.Intent {
	return &core.Intent{
		Name:       name,
		Confidence: 0.9,
		Entities:   map[string]string{},
		Utterance:  core.Utterance{Text: text, Language: core.LangTunisian, Origin: core.OriginText, Timestamp: time.Now()},
	}
}

func TestFetchEmailTransitionsToEmailFlow(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	repo := &fakeRepo{}
	d := newDispatcher(email, &fakeWeather{}, nil, repo)
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentFetchEmail, "اعطيني الايميلات"), state)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Contains(t, result.Response, "2", "response carries the email count")
	assert.Equal(t, core.TopicEmailFlow, state.Topic)
	assert.Equal(t, "msg-1", state.CurrentEmailID)
	assert.Equal(t, []string{"msg-1", "msg-2"}, state.EmailIDs)
	assert.Equal(t, 1, repo.countKind(core.MemoryEmailContext))
	assert.Equal(t, 1, repo.countKind(core.MemoryConversation))
}

func TestSendReplyWithoutDraftFails(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	d := newDispatcher(email, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentSendReply, "ابعت الرد"), state)

	assert.ErrorIs(t, err, core.ErrNoDraftPending)
	assert.False(t, result.OK)
	assert.Equal(t, core.TopicIdle, state.Topic, "state unchanged on failure")
	assert.Zero(t, email.sendCalls, "send is never invoked without a buffered draft")
}

func TestSendGuardInEveryNonConfirmationState(t *testing.T) {
	for _, topic := range []core.Topic{core.TopicIdle, core.TopicEmailFlow} {
		email := &fakeEmail{inbox: sampleInbox()}
		d := newDispatcher(email, &fakeWeather{}, nil, &fakeRepo{})
		state := core.NewDialogueState()
		state.Topic = topic
		state.CurrentEmailID = "msg-1"

		_, err := d.Dispatch(context.Background(), tnIntent(core.IntentSendReply, "ابعتها"), state)

		assert.ErrorIs(t, err, core.ErrNoDraftPending)
		assert.Zero(t, email.sendCalls)
		assert.Equal(t, topic, state.Topic)
	}
}

func TestDraftThenSend(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	interp := &fakeInterpreter{draft: "Merci, I confirm the meeting."}
	repo := &fakeRepo{}
	d := newDispatcher(email, &fakeWeather{}, interp, repo)

	state := core.NewDialogueState()
	state.Topic = core.TopicEmailFlow
	state.CurrentEmailID = "msg-1"

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentDraftReply, "حضرلي رد"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, core.TopicAwaitingConfirmation, state.Topic)
	require.NotNil(t, state.PendingDraft)
	assert.Equal(t, "sami@example.tn", state.PendingDraft.To)
	assert.Equal(t, "Re: Meeting", state.PendingDraft.Subject)
	assert.Zero(t, email.sendCalls, "drafting never sends")

	result, err = d.Dispatch(context.Background(), tnIntent(core.IntentSendReply, "ابعت الرد"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 1, email.sendCalls, "send invoked exactly once")
	assert.Equal(t, core.TopicEmailFlow, state.Topic)
	assert.Nil(t, state.PendingDraft)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "Merci, I confirm the meeting.", email.sent[0].Body)
}

func TestDraftReplyFallbackBodyWhenInterpreterDown(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	interp := &fakeInterpreter{err: errors.New("model unreachable")}
	d := newDispatcher(email, &fakeWeather{}, interp, &fakeRepo{})

	state := core.NewDialogueState()
	state.Topic = core.TopicEmailFlow
	state.CurrentEmailID = "msg-1"

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentDraftReply, "حضرلي رد"), state)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.NotNil(t, state.PendingDraft)
	assert.NotEmpty(t, state.PendingDraft.Body, "static fallback body buffered")
}

func TestUnknownIntentClarifiesWithoutEmailContext(t *testing.T) {
	repo := &fakeRepo{}
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, repo)
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentUnknown, "بلابلا"), state)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.NotEmpty(t, result.Response)
	assert.Equal(t, core.TopicIdle, state.Topic)
	assert.Empty(t, state.LastIntent, "unknown leaves the dialogue state untouched")
	assert.Zero(t, repo.countKind(core.MemoryEmailContext), "no email context written for unknown")
}

func TestCollaboratorFailureKeepsState(t *testing.T) {
	email := &fakeEmail{listErr: errors.New("provider unreachable")}
	repo := &fakeRepo{}
	d := newDispatcher(email, &fakeWeather{}, nil, repo)
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentFetchEmail, "اعطيني الايميلات"), state)

	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Response, "failure still yields a spoken apology")
	assert.Equal(t, core.TopicIdle, state.Topic)
	assert.Zero(t, len(repo.items), "no memory writes on failure")
}

func TestCollaboratorTimeout(t *testing.T) {
	email := &fakeEmail{listErr: context.DeadlineExceeded}
	d := newDispatcher(email, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	_, err := d.Dispatch(context.Background(), tnIntent(core.IntentFetchEmail, "اعطيني الايميلات"), state)
	assert.ErrorIs(t, err, core.ErrCollaboratorTimeout)
}

func TestCalculate(t *testing.T) {
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	intent := tnIntent(core.IntentCalculate, "احسب 3 زائد 4")
	intent.Entities = map[string]string{
		core.EntityOperand1: "3",
		core.EntityOperator: "+",
		core.EntityOperand2: "4",
	}

	result, err := d.Dispatch(context.Background(), intent, state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "7", result.Payload["result"])
	assert.Equal(t, core.TopicIdle, state.Topic, "informational action leaves state alone")
}

func TestCalculateDivideByZero(t *testing.T) {
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	intent := tnIntent(core.IntentCalculate, "احسب 5 على 0")
	intent.Entities = map[string]string{
		core.EntityOperand1: "5",
		core.EntityOperator: "/",
		core.EntityOperand2: "0",
	}

	result, err := d.Dispatch(context.Background(), intent, state)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestGetTimeMorningGreeting(t *testing.T) {
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentGetTime, "قداش الوقت"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Contains(t, result.Response, "09:00")
}

func TestGetWeatherDefaultsToConfiguredCity(t *testing.T) {
	weather := &fakeWeather{report: &core.WeatherReport{City: "Tunis", TempC: 28, Description: "clear sky", Humidity: 40, WindSpeed: 12}}
	d := newDispatcher(&fakeEmail{}, weather, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentGetWeather, "كيفاش الطقس"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Tunis", weather.lastCity)
	assert.Contains(t, result.Response, "Tunis")
}

func TestTellJokeUsesLanguageBank(t *testing.T) {
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentTellJoke, "اعطيني نكتة"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)

	found := false
	for _, joke := range lexicon.Default().Jokes(core.LangTunisian) {
		if joke == result.Response {
			found = true
		}
	}
	assert.True(t, found, "joke comes from the Derja bank")
	assert.Equal(t, core.EmotionHappy, result.Emotion)
}

func TestGoodbyeEndsSession(t *testing.T) {
	d := newDispatcher(&fakeEmail{}, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentGoodbye, "باي باي"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, core.TopicEnded, state.Topic)
}

func TestReadEmailAdvancesThroughInbox(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	repo := &fakeRepo{}
	d := newDispatcher(email, &fakeWeather{}, nil, repo)
	state := core.NewDialogueState()

	_, err := d.Dispatch(context.Background(), tnIntent(core.IntentFetchEmail, "اعطيني الايميلات"), state)
	require.NoError(t, err)

	first, err := d.Dispatch(context.Background(), tnIntent(core.IntentReadEmail, "اقرا الايميل"), state)
	require.NoError(t, err)
	assert.Contains(t, first.Response, "Meeting")
	assert.Equal(t, "msg-1", state.CurrentEmailID)

	second, err := d.Dispatch(context.Background(), tnIntent(core.IntentReadEmail, "الايميل الجاي"), state)
	require.NoError(t, err)
	assert.Contains(t, second.Response, "Invoice")
	assert.Equal(t, "msg-2", state.CurrentEmailID)
}

func TestOrganizeEmailArchivesReadMessages(t *testing.T) {
	email := &fakeEmail{inbox: sampleInbox()}
	d := newDispatcher(email, &fakeWeather{}, nil, &fakeRepo{})
	state := core.NewDialogueState()

	result, err := d.Dispatch(context.Background(), tnIntent(core.IntentOrganizeEmail, "نظملي الايميلات"), state)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, []string{"msg-2"}, email.moved, "only the read message is archived")
	assert.Equal(t, core.TopicEmailFlow, state.Topic)
}
