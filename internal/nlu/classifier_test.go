package nlu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/lexicon"
)

func newClassifier(t *testing.T, crossLanguage bool) *Classifier {
	t.Helper()
	return NewClassifier(lexicon.Default(), 0.5, crossLanguage, zap.NewNop())
}

func utterance(text string, lang core.Language) core.Utterance {
	return core.Utterance{Text: text, Language: lang, Origin: core.OriginText, Timestamp: time.Now()}
}

func TestClassifyDerjaFetchEmail(t *testing.T) {
	c := newClassifier(t, true)

	intent := c.Classify(utterance("أعطيني الإيميلات", core.LangTunisian), core.MemorySnapshot{})

	assert.Equal(t, core.IntentFetchEmail, intent.Name)
	assert.GreaterOrEqual(t, intent.Confidence, 0.8)
	assert.False(t, intent.NeedsFallback)
}

func TestClassifyDerjaDraftAndSend(t *testing.T) {
	c := newClassifier(t, true)

	draft := c.Classify(utterance("حضرلي رد", core.LangTunisian), core.MemorySnapshot{})
	assert.Equal(t, core.IntentDraftReply, draft.Name)
	assert.GreaterOrEqual(t, draft.Confidence, 0.8)

	send := c.Classify(utterance("أبعت الرد", core.LangTunisian), core.MemorySnapshot{})
	assert.Equal(t, core.IntentSendReply, send.Name)
	assert.GreaterOrEqual(t, send.Confidence, 0.8)
}

func TestClassifyArabiziUtterance(t *testing.T) {
	c := newClassifier(t, true)

	intent := c.Classify(utterance("3atini el emails", core.LangTunisian), core.MemorySnapshot{})
	assert.Equal(t, core.IntentFetchEmail, intent.Name)
	assert.GreaterOrEqual(t, intent.Confidence, 0.8)
}

func TestClassifyContiguousBeatsScattered(t *testing.T) {
	c := newClassifier(t, false)

	// Exact phrase inside a longer utterance scores 1.0.
	exact := c.Classify(utterance("please get my emails now", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentFetchEmail, exact.Name)
	assert.Equal(t, 1.0, exact.Confidence)

	// All tokens present but scattered falls back to the rule weight.
	scattered := c.Classify(utterance("emails get my now", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentFetchEmail, scattered.Name)
	assert.Equal(t, 0.8, scattered.Confidence)
}

func TestClassifyEmptyUtterance(t *testing.T) {
	c := newClassifier(t, true)

	intent := c.Classify(utterance("   ", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentUnknown, intent.Name)
	assert.Equal(t, 0.0, intent.Confidence)
	assert.False(t, intent.NeedsFallback)
}

func TestClassifyGibberishFlagsFallback(t *testing.T) {
	c := newClassifier(t, true)

	intent := c.Classify(utterance("xyzzy frobnicate", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentUnknown, intent.Name)
	assert.True(t, intent.NeedsFallback)
	assert.Empty(t, intent.Entities)
}

func TestClassifyCrossLanguageFallback(t *testing.T) {
	// Derja command with an English session language only resolves when
	// cross-language matching is on.
	with := newClassifier(t, true)
	intent := with.Classify(utterance("قداش الوقت", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentGetTime, intent.Name)

	without := newClassifier(t, false)
	intent = without.Classify(utterance("قداش الوقت", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentUnknown, intent.Name)
}

func TestClassifyActiveLanguageWins(t *testing.T) {
	c := newClassifier(t, true)

	// "احسب" exists in both ar and tn tables; the active language's rules
	// are the ones consulted first and no cross-language pass runs.
	intent := c.Classify(utterance("احسب ٣ زائد ٤", core.LangTunisian), core.MemorySnapshot{})
	assert.Equal(t, core.IntentCalculate, intent.Name)
	assert.Equal(t, "3", intent.Entities[core.EntityOperand1])
	assert.Equal(t, "+", intent.Entities[core.EntityOperator])
	assert.Equal(t, "4", intent.Entities[core.EntityOperand2])
}

func TestClassifyCalculateEntities(t *testing.T) {
	c := newClassifier(t, false)

	intent := c.Classify(utterance("calculate 3 plus 4", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentCalculate, intent.Name)
	assert.Equal(t, "3", intent.Entities[core.EntityOperand1])
	assert.Equal(t, "+", intent.Entities[core.EntityOperator])
	assert.Equal(t, "4", intent.Entities[core.EntityOperand2])

	intent = c.Classify(utterance("calculate 10 / 2", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, "10", intent.Entities[core.EntityOperand1])
	assert.Equal(t, "/", intent.Entities[core.EntityOperator])
	assert.Equal(t, "2", intent.Entities[core.EntityOperand2])
}

func TestClassifyWeatherCity(t *testing.T) {
	c := newClassifier(t, false)

	intent := c.Classify(utterance("what is the weather in tunis", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentGetWeather, intent.Name)
	assert.Equal(t, "Tunis", intent.Entities[core.EntityCity])

	intent = c.Classify(utterance("what is the weather in new york", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, "New York", intent.Entities[core.EntityCity])
}

func TestClassifyDerjaWeatherCity(t *testing.T) {
	c := newClassifier(t, true)

	intent := c.Classify(utterance("كيفاش الطقس في سوسة", core.LangTunisian), core.MemorySnapshot{})
	assert.Equal(t, core.IntentGetWeather, intent.Name)
	assert.Equal(t, "Sousse", intent.Entities[core.EntityCity])
}

func TestClassifyEllipsisResolution(t *testing.T) {
	c := newClassifier(t, false)

	snapshot := core.MemorySnapshot{
		EmailContext: []core.MemoryItem{
			{Kind: core.MemoryEmailContext, Payload: map[string]string{"email_id": "msg-9"}},
		},
	}

	intent := c.Classify(utterance("send it", core.LangEnglish), snapshot)
	assert.Equal(t, core.IntentSendReply, intent.Name)
	assert.Equal(t, "msg-9", intent.Entities[core.EntityEmailID])
}

func TestClassifyReadEmailIgnoresMemoryReference(t *testing.T) {
	c := newClassifier(t, false)

	snapshot := core.MemorySnapshot{
		EmailContext: []core.MemoryItem{
			{Kind: core.MemoryEmailContext, Payload: map[string]string{"email_id": "msg-9"}},
		},
	}

	// A read without an explicit reference must keep its entity empty so the
	// dispatcher can walk the fetched list instead of re-reading msg-9.
	intent := c.Classify(utterance("read the next email", core.LangEnglish), snapshot)
	assert.Equal(t, core.IntentReadEmail, intent.Name)
	assert.Empty(t, intent.Entities[core.EntityEmailID])
}

func TestClassifyEllipsisWithoutContext(t *testing.T) {
	c := newClassifier(t, false)

	intent := c.Classify(utterance("send it", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentSendReply, intent.Name)
	assert.Empty(t, intent.Entities[core.EntityEmailID])
}

func TestClassifyFetchEmailCount(t *testing.T) {
	c := newClassifier(t, false)

	intent := c.Classify(utterance("get my emails show me 3", core.LangEnglish), core.MemorySnapshot{})
	assert.Equal(t, core.IntentFetchEmail, intent.Name)
	assert.Equal(t, "3", intent.Entities[core.EntityEmailCount])
}
