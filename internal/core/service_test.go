package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/lexicon"
	"github.com/mikey/luca-assistant/internal/nlu"
	"github.com/mikey/luca-assistant/internal/respond"
	"github.com/mikey/luca-assistant/internal/wake"
)

func newSession(email *fakeEmail, interp core.Interpreter, repo *fakeRepo, continuous bool) *core.Session {
	lex := lexicon.Default()
	dispatcher := core.NewDispatcher(email, &fakeWeather{}, interp,
		fixedClock{time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)},
		repo, lex, time.Second, "Tunis", zap.NewNop())

	return core.NewSession(
		wake.NewDetector(lex, 0.7),
		nlu.NewClassifier(lex, 0.5, true, zap.NewNop()),
		dispatcher,
		interp,
		repo,
		respond.NewFormatter(),
		nil,
		continuous,
		0.5,
		time.Second,
		zap.NewNop(),
	)
}

func voiceUtt(text string, lang core.Language) core.Utterance {
	return core.Utterance{Text: text, Language: lang, Origin: core.OriginVoice, Timestamp: time.Now()}
}

func textUtt(text string, lang core.Language) core.Utterance {
	return core.Utterance{Text: text, Language: lang, Origin: core.OriginText, Timestamp: time.Now()}
}

func TestContinuousModeIgnoresUnwokenVoice(t *testing.T) {
	repo := &fakeRepo{}
	session := newSession(&fakeEmail{inbox: sampleInbox()}, nil, repo, true)

	out, err := session.ProcessTurn(context.Background(), voiceUtt("get my emails", core.LangEnglish))

	require.NoError(t, err)
	assert.False(t, out.Activated, "no wake phrase, no processing")
	assert.Empty(t, repo.items, "skipped turn writes nothing")
}

func TestContinuousModeProcessesAfterWakePhrase(t *testing.T) {
	repo := &fakeRepo{}
	session := newSession(&fakeEmail{inbox: sampleInbox()}, nil, repo, true)

	out, err := session.ProcessTurn(context.Background(), voiceUtt("hey luca get my emails", core.LangEnglish))

	require.NoError(t, err)
	assert.True(t, out.Activated)
	assert.True(t, out.Result.OK)
	assert.Equal(t, core.TopicEmailFlow, session.State().Topic)
}

func TestTextInputBypassesWakeGate(t *testing.T) {
	repo := &fakeRepo{}
	session := newSession(&fakeEmail{inbox: sampleInbox()}, nil, repo, true)

	out, err := session.ProcessTurn(context.Background(), textUtt("get my emails", core.LangEnglish))

	require.NoError(t, err)
	assert.True(t, out.Activated)
	assert.True(t, out.Result.OK)
}

func TestSessionEndsAfterGoodbye(t *testing.T) {
	session := newSession(&fakeEmail{}, nil, &fakeRepo{}, false)

	out, err := session.ProcessTurn(context.Background(), textUtt("goodbye", core.LangEnglish))
	require.NoError(t, err)
	assert.True(t, out.Result.OK)
	assert.Equal(t, core.TopicEnded, session.State().Topic)

	_, err = session.ProcessTurn(context.Background(), textUtt("hello", core.LangEnglish))
	assert.ErrorIs(t, err, core.ErrSessionEnded)
}

func TestFallbackSubstitutesIntent(t *testing.T) {
	interp := &fakeInterpreter{intent: &core.Intent{
		Name:       core.IntentGetTime,
		Confidence: 0.9,
		Entities:   map[string]string{},
	}}
	session := newSession(&fakeEmail{}, interp, &fakeRepo{}, false)

	out, err := session.ProcessTurn(context.Background(), textUtt("xyzzy frobnicate", core.LangEnglish))

	require.NoError(t, err)
	assert.True(t, out.Result.OK)
	assert.Contains(t, out.Response, "09:00", "AI fallback resolved the gibberish to get_time")
}

func TestFallbackUnavailableKeepsUnknown(t *testing.T) {
	interp := &fakeInterpreter{err: context.DeadlineExceeded}
	session := newSession(&fakeEmail{}, interp, &fakeRepo{}, false)

	out, err := session.ProcessTurn(context.Background(), textUtt("xyzzy frobnicate", core.LangEnglish))

	require.NoError(t, err)
	assert.True(t, out.Result.OK, "clarification is still a successful turn")
	assert.Empty(t, session.State().LastIntent, "unknown never touches dialogue state")
}

func TestFallbackBelowThresholdKeepsUnknown(t *testing.T) {
	interp := &fakeInterpreter{intent: &core.Intent{
		Name:       core.IntentGetTime,
		Confidence: 0.2,
		Entities:   map[string]string{},
	}}
	session := newSession(&fakeEmail{}, interp, &fakeRepo{}, false)

	out, err := session.ProcessTurn(context.Background(), textUtt("xyzzy frobnicate", core.LangEnglish))

	require.NoError(t, err)
	assert.True(t, out.Result.OK, "clarification is still a successful turn")
	assert.NotContains(t, out.Response, "09:00", "a low-confidence verdict is never dispatched")
	assert.Empty(t, session.State().LastIntent)
}

func TestReadNextEmailAdvances(t *testing.T) {
	repo := &fakeRepo{}
	email := &fakeEmail{inbox: sampleInbox()}
	session := newSession(email, nil, repo, false)
	ctx := context.Background()

	_, err := session.ProcessTurn(ctx, textUtt("get my emails", core.LangEnglish))
	require.NoError(t, err)

	first, err := session.ProcessTurn(ctx, textUtt("read the email", core.LangEnglish))
	require.NoError(t, err)
	assert.Contains(t, first.Response, "Meeting")
	assert.Equal(t, "msg-1", session.State().CurrentEmailID)

	second, err := session.ProcessTurn(ctx, textUtt("read the next email", core.LangEnglish))
	require.NoError(t, err)
	assert.Contains(t, second.Response, "Invoice")
	assert.Equal(t, "msg-2", session.State().CurrentEmailID)
}

func TestMemorySnapshotFeedsEllipsis(t *testing.T) {
	repo := &fakeRepo{}
	email := &fakeEmail{inbox: sampleInbox()}
	interp := &fakeInterpreter{draft: "On it."}
	session := newSession(email, interp, repo, false)
	ctx := context.Background()

	_, err := session.ProcessTurn(ctx, textUtt("get my emails", core.LangEnglish))
	require.NoError(t, err)

	_, err = session.ProcessTurn(ctx, textUtt("draft a reply", core.LangEnglish))
	require.NoError(t, err)
	assert.Equal(t, core.TopicAwaitingConfirmation, session.State().Topic)

	_, err = session.ProcessTurn(ctx, textUtt("send it", core.LangEnglish))
	require.NoError(t, err)
	assert.Equal(t, 1, email.sendCalls)
	assert.Equal(t, core.TopicEmailFlow, session.State().Topic)
}

func TestPipelineDerjaEndToEnd(t *testing.T) {
	repo := &fakeRepo{}
	email := &fakeEmail{inbox: sampleInbox()}
	interp := &fakeInterpreter{draft: "يعيشك، نأكدلك الموعد."}
	session := newSession(email, interp, repo, false)
	ctx := context.Background()

	out, err := session.ProcessTurn(ctx, textUtt("أعطيني الإيميلات", core.LangTunisian))
	require.NoError(t, err)
	assert.Contains(t, out.Response, "2")

	_, err = session.ProcessTurn(ctx, textUtt("حضرلي رد", core.LangTunisian))
	require.NoError(t, err)

	_, err = session.ProcessTurn(ctx, textUtt("أبعت الرد", core.LangTunisian))
	require.NoError(t, err)
	assert.Equal(t, 1, email.sendCalls)
}
