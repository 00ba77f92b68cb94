package core

import (
	"time"
)

// Language identifies which lexicon the pipeline consults for an utterance.
type Language string

const (
	LangEnglish  Language = "en"
	LangArabic   Language = "ar"
	LangTunisian Language = "tn"
)

// Origin records how an utterance entered the pipeline.
type Origin string

const (
	OriginVoice Origin = "voice"
	OriginText  Origin = "text"
)

// Utterance is a single piece of user input. Immutable once created.
type Utterance struct {
	Text      string
	Language  Language
	Origin    Origin
	Timestamp time.Time
}

// IntentName enumerates every intent the classifier can resolve to.
// Classification is total: anything unrecognized maps to IntentUnknown.
type IntentName string

const (
	IntentFetchEmail    IntentName = "fetch_email"
	IntentReadEmail     IntentName = "read_email"
	IntentDraftReply    IntentName = "draft_reply"
	IntentSendReply     IntentName = "send_reply"
	IntentOrganizeEmail IntentName = "organize_email"
	IntentGetTime       IntentName = "get_time"
	IntentGetWeather    IntentName = "get_weather"
	IntentTellJoke      IntentName = "tell_joke"
	IntentCalculate     IntentName = "calculate"
	IntentGetQuote      IntentName = "get_quote"
	IntentGreet         IntentName = "greet"
	IntentHelp          IntentName = "help"
	IntentGoodbye       IntentName = "goodbye"
	IntentUnknown       IntentName = "unknown"
)

// AllIntents lists the closed enumeration in declaration order. The order is
// the final classification tie-break.
var AllIntents = []IntentName{
	IntentFetchEmail,
	IntentReadEmail,
	IntentDraftReply,
	IntentSendReply,
	IntentOrganizeEmail,
	IntentGetTime,
	IntentGetWeather,
	IntentTellJoke,
	IntentCalculate,
	IntentGetQuote,
	IntentGreet,
	IntentHelp,
	IntentGoodbye,
	IntentUnknown,
}

// Entity keys the classifier may populate.
const (
	EntityCity       = "city"
	EntityOperand1   = "operand1"
	EntityOperand2   = "operand2"
	EntityOperator   = "operator"
	EntityEmailCount = "email_count"
	EntityEmailID    = "email_id"
)

// Intent is the classifier's verdict for one utterance. Never mutated after
// creation; the pipeline builds a replacement when the AI fallback answers.
type Intent struct {
	Name          IntentName
	Confidence    float64
	Entities      map[string]string
	Utterance     Utterance
	NeedsFallback bool
}

// MemoryKind partitions memory items; eviction is enforced per kind.
type MemoryKind string

const (
	MemoryConversation MemoryKind = "conversation"
	MemoryEmailContext MemoryKind = "email_context"
	MemoryPreference   MemoryKind = "preference"
)

// MemoryItem is an append-only record owned by the memory repository.
type MemoryItem struct {
	Kind      MemoryKind
	Payload   map[string]string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// MemorySnapshot is the read-only view handed to the classifier and
// dispatcher for one turn. Items are ordered most recent first.
type MemorySnapshot struct {
	Conversation []MemoryItem
	EmailContext []MemoryItem
	Preference   []MemoryItem
}

// Recent returns the most recent item of the given kind, if any.
func (s MemorySnapshot) Recent(kind MemoryKind) (MemoryItem, bool) {
	var items []MemoryItem
	switch kind {
	case MemoryConversation:
		items = s.Conversation
	case MemoryEmailContext:
		items = s.EmailContext
	case MemoryPreference:
		items = s.Preference
	}
	if len(items) == 0 {
		return MemoryItem{}, false
	}
	return items[0], true
}

// Topic is the dialogue state machine's position.
type Topic string

const (
	TopicIdle                 Topic = "idle"
	TopicEmailFlow            Topic = "email_flow"
	TopicAwaitingConfirmation Topic = "awaiting_confirmation"
	TopicEnded                Topic = "ended"
)

// DialogueState is the single mutable record per session. The dispatcher is
// its sole writer. Invariant: Topic == TopicEmailFlow implies CurrentEmailID
// is non-empty.
type DialogueState struct {
	Topic          Topic
	LastIntent     IntentName
	CurrentEmailID string
	EmailIDs       []string
	EmailIndex     int
	PendingDraft   *Draft
}

// NewDialogueState returns a fresh idle state for a new session.
func NewDialogueState() *DialogueState {
	return &DialogueState{Topic: TopicIdle}
}

// ActionResult is what one dispatch produced. Immutable.
type ActionResult struct {
	OK       bool
	Response string
	Emotion  string
	Payload  map[string]string
}

// EmailMessage is the collaborator exchange type for inbox contents.
type EmailMessage struct {
	ID      string
	From    string
	Subject string
	Body    string
	Unread  bool
}

// Draft is a reply buffered in awaiting_confirmation, sent on send_reply.
type Draft struct {
	To        string
	Subject   string
	Body      string
	InReplyTo string
}

// Prosody carries emotion-derived hints for the TTS collaborator. The
// formatter never applies these to the text itself.
type Prosody struct {
	Rate   int
	Volume float64
	Pitch  int
}

// WeatherReport is the structured payload returned by the weather
// collaborator before localization.
type WeatherReport struct {
	City        string
	TempC       float64
	Description string
	Humidity    int
	WindSpeed   float64
}
