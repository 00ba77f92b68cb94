package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Amusements is the source of the joke and quote banks. Satisfied by the
// lexicon.
type Amusements interface {
	Jokes(lang Language) []string
	Quotes(lang Language) []string
}

// Dispatcher maps an Intent plus the current DialogueState to a collaborator
// call, a new state and a localized response. It is the sole writer of
// DialogueState and of memory items; on any failure the state is left
// untouched so the same turn can be retried.
type Dispatcher struct {
	email       EmailProvider
	weather     WeatherProvider
	interpreter Interpreter
	clock       Clock
	memory      MemoryRepository
	fun         Amusements
	timeout     time.Duration
	defaultCity string
	logger      *zap.Logger
}

// NewDispatcher wires the dispatcher to its collaborators. timeout bounds
// every external call; defaultCity is used when get_weather carries no city.
func NewDispatcher(
	email EmailProvider,
	weather WeatherProvider,
	interpreter Interpreter,
	clock Clock,
	memory MemoryRepository,
	fun Amusements,
	timeout time.Duration,
	defaultCity string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		email:       email,
		weather:     weather,
		interpreter: interpreter,
		clock:       clock,
		memory:      memory,
		fun:         fun,
		timeout:     timeout,
		defaultCity: defaultCity,
		logger:      logger,
	}
}

// Dispatch executes one intent. The returned error is nil for user-level
// failures (no draft, bad expression); collaborator failures return both a
// failed result and the wrapped error.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language

	var result ActionResult
	var err error

	switch intent.Name {
	case IntentFetchEmail:
		result, err = d.fetchEmail(ctx, intent, state)
	case IntentReadEmail:
		result, err = d.readEmail(ctx, intent, state)
	case IntentOrganizeEmail:
		result, err = d.organizeEmail(ctx, intent, state)
	case IntentDraftReply:
		result, err = d.draftReply(ctx, intent, state)
	case IntentSendReply:
		result, err = d.sendReply(ctx, intent, state)
	case IntentGetTime:
		result = d.getTime(lang)
	case IntentGetWeather:
		result, err = d.getWeather(ctx, intent)
	case IntentTellJoke:
		result = d.pick(d.fun.Jokes(lang), lang, EmotionHappy)
	case IntentGetQuote:
		result = d.pick(d.fun.Quotes(lang), lang, EmotionCalm)
	case IntentCalculate:
		result = d.calculate(intent)
	case IntentGreet:
		result = ActionResult{OK: true, Response: message(lang, msgGreet), Emotion: EmotionHappy}
	case IntentHelp:
		result = ActionResult{OK: true, Response: message(lang, msgHelp), Emotion: EmotionNeutral}
	case IntentGoodbye:
		result = ActionResult{OK: true, Response: message(lang, msgGoodbye), Emotion: EmotionCalm}
	default:
		result = ActionResult{OK: true, Response: message(lang, msgClarify), Emotion: EmotionNeutral}
	}

	if result.OK {
		if intent.Name == IntentGoodbye {
			state.Topic = TopicEnded
		}
		if intent.Name != IntentUnknown {
			state.LastIntent = intent.Name
		}
		d.remember(ctx, MemoryConversation, map[string]string{
			"utterance": intent.Utterance.Text,
			"response":  result.Response,
			"intent":    string(intent.Name),
		})
	}
	return result, err
}

func (d *Dispatcher) fetchEmail(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language
	max := 5
	if n, err := strconv.Atoi(intent.Entities[EntityEmailCount]); err == nil && n > 0 {
		max = n
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	emails, err := d.email.ListInbox(callCtx, max)
	if err != nil {
		return d.fail(lang), d.collaboratorError("list inbox", err)
	}

	if len(emails) == 0 {
		return ActionResult{OK: true, Response: message(lang, msgNoEmails), Emotion: EmotionNeutral}, nil
	}

	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}
	state.Topic = TopicEmailFlow
	state.EmailIDs = ids
	state.EmailIndex = 0
	state.CurrentEmailID = ids[0]
	d.remember(ctx, MemoryEmailContext, map[string]string{"email_id": ids[0]})

	return ActionResult{
		OK:       true,
		Response: message(lang, msgEmailCount, len(emails), emails[0].From, emails[0].Subject),
		Emotion:  EmotionNeutral,
		Payload:  map[string]string{"email_count": strconv.Itoa(len(emails))},
	}, nil
}

func (d *Dispatcher) readEmail(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language

	id := intent.Entities[EntityEmailID]
	advance := false
	if id == "" && len(state.EmailIDs) > 0 && state.EmailIndex < len(state.EmailIDs) {
		id = state.EmailIDs[state.EmailIndex]
		advance = true
	}
	if id == "" {
		id = state.CurrentEmailID
	}
	if id == "" {
		return ActionResult{OK: false, Response: message(lang, msgNoEmailRef), Emotion: EmotionApologetic}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	email, err := d.email.Get(callCtx, id)
	if err != nil {
		return d.fail(lang), d.collaboratorError("get email", err)
	}

	state.Topic = TopicEmailFlow
	state.CurrentEmailID = id
	if advance && state.EmailIndex < len(state.EmailIDs)-1 {
		state.EmailIndex++
	}
	d.remember(ctx, MemoryEmailContext, map[string]string{"email_id": id})

	return ActionResult{
		OK:       true,
		Response: message(lang, msgEmailRead, email.From, email.Subject, email.Body),
		Emotion:  EmotionNeutral,
	}, nil
}

func (d *Dispatcher) organizeEmail(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	emails, err := d.email.ListInbox(callCtx, 50)
	if err != nil {
		return d.fail(lang), d.collaboratorError("list inbox", err)
	}
	if len(emails) == 0 {
		return ActionResult{OK: true, Response: message(lang, msgNoEmails), Emotion: EmotionNeutral}, nil
	}

	moved := 0
	for _, e := range emails {
		if e.Unread {
			continue
		}
		moveCtx, cancelMove := context.WithTimeout(ctx, d.timeout)
		err := d.email.Move(moveCtx, e.ID, "archive")
		cancelMove()
		if err != nil {
			return d.fail(lang), d.collaboratorError("move email", err)
		}
		moved++
	}

	state.Topic = TopicEmailFlow
	state.CurrentEmailID = emails[0].ID
	d.remember(ctx, MemoryEmailContext, map[string]string{"email_id": emails[0].ID})

	return ActionResult{
		OK:       true,
		Response: message(lang, msgOrganized, moved),
		Emotion:  EmotionNeutral,
		Payload:  map[string]string{"moved": strconv.Itoa(moved)},
	}, nil
}

func (d *Dispatcher) draftReply(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language

	id := intent.Entities[EntityEmailID]
	if id == "" {
		id = state.CurrentEmailID
	}
	if id == "" {
		return ActionResult{OK: false, Response: message(lang, msgNoEmailRef), Emotion: EmotionApologetic}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	email, err := d.email.Get(callCtx, id)
	if err != nil {
		return d.fail(lang), d.collaboratorError("get email", err)
	}

	// AI-generated body preferred; a static fallback keeps the flow usable
	// when the interpreter is down or disabled.
	body := message(lang, msgDraftFallback)
	if d.interpreter != nil {
		draftCtx, cancelDraft := context.WithTimeout(ctx, d.timeout)
		generated, err := d.interpreter.DraftReply(draftCtx, email, lang)
		cancelDraft()
		if err != nil {
			d.logger.Warn("reply generation failed, using fallback draft", zap.Error(err))
		} else if generated != "" {
			body = generated
		}
	}

	state.Topic = TopicAwaitingConfirmation
	state.CurrentEmailID = id
	state.PendingDraft = &Draft{
		To:        email.From,
		Subject:   "Re: " + email.Subject,
		Body:      body,
		InReplyTo: id,
	}
	d.remember(ctx, MemoryEmailContext, map[string]string{"email_id": id, "draft": body})

	return ActionResult{
		OK:       true,
		Response: message(lang, msgDraftReady, body),
		Emotion:  EmotionNeutral,
	}, nil
}

func (d *Dispatcher) sendReply(ctx context.Context, intent *Intent, state *DialogueState) (ActionResult, error) {
	lang := intent.Utterance.Language

	if state.Topic != TopicAwaitingConfirmation || state.PendingDraft == nil {
		return ActionResult{OK: false, Response: message(lang, msgNoDraft), Emotion: EmotionApologetic},
			ErrNoDraftPending
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.email.Send(callCtx, state.PendingDraft); err != nil {
		return d.fail(lang), d.collaboratorError("send reply", err)
	}

	to := state.PendingDraft.To
	state.Topic = TopicEmailFlow
	state.PendingDraft = nil
	d.remember(ctx, MemoryEmailContext, map[string]string{"email_id": state.CurrentEmailID, "sent_to": to})

	return ActionResult{OK: true, Response: message(lang, msgSent, to), Emotion: EmotionHappy}, nil
}

func (d *Dispatcher) getTime(lang Language) ActionResult {
	now := d.clock.Now()
	key := msgTimeEvening
	switch {
	case now.Hour() < 12:
		key = msgTimeMorning
	case now.Hour() < 18:
		key = msgTimeAfternoon
	}
	return ActionResult{
		OK:       true,
		Response: message(lang, key, now.Format("15:04")),
		Emotion:  EmotionNeutral,
		Payload:  map[string]string{"time": now.Format("15:04")},
	}
}

func (d *Dispatcher) getWeather(ctx context.Context, intent *Intent) (ActionResult, error) {
	lang := intent.Utterance.Language
	city := intent.Entities[EntityCity]
	if city == "" {
		city = d.defaultCity
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	report, err := d.weather.Current(callCtx, city)
	if err != nil {
		return d.fail(lang), d.collaboratorError("weather lookup", err)
	}

	return ActionResult{
		OK: true,
		Response: message(lang, msgWeather,
			report.City, report.TempC, report.Description, report.Humidity, report.WindSpeed),
		Emotion: EmotionNeutral,
		Payload: map[string]string{
			"city":        report.City,
			"temp_c":      strconv.FormatFloat(report.TempC, 'f', 1, 64),
			"description": report.Description,
		},
	}, nil
}

func (d *Dispatcher) calculate(intent *Intent) ActionResult {
	lang := intent.Utterance.Language

	a, errA := strconv.ParseFloat(intent.Entities[EntityOperand1], 64)
	b, errB := strconv.ParseFloat(intent.Entities[EntityOperand2], 64)
	op := intent.Entities[EntityOperator]
	if errA != nil || errB != nil || op == "" {
		return ActionResult{OK: false, Response: message(lang, msgBadExpression), Emotion: EmotionApologetic}
	}

	var value float64
	switch op {
	case "+":
		value = a + b
	case "-":
		value = a - b
	case "*":
		value = a * b
	case "/":
		if b == 0 {
			return ActionResult{OK: false, Response: message(lang, msgDivideZero), Emotion: EmotionApologetic}
		}
		value = a / b
	default:
		return ActionResult{OK: false, Response: message(lang, msgBadExpression), Emotion: EmotionApologetic}
	}

	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	return ActionResult{
		OK: true,
		Response: message(lang, msgCalcResult,
			intent.Entities[EntityOperand1], op, intent.Entities[EntityOperand2], formatted),
		Emotion: EmotionNeutral,
		Payload: map[string]string{"result": formatted},
	}
}

func (d *Dispatcher) pick(bank []string, lang Language, emotion string) ActionResult {
	if len(bank) == 0 {
		return ActionResult{OK: true, Response: message(lang, msgClarify), Emotion: EmotionNeutral}
	}
	text := bank[rand.Intn(len(bank))]
	return ActionResult{OK: true, Response: text, Emotion: emotion, Payload: map[string]string{"text": text}}
}

// fail is the spoken apology for a collaborator failure. State is never
// mutated on this path.
func (d *Dispatcher) fail(lang Language) ActionResult {
	return ActionResult{OK: false, Response: message(lang, msgApology), Emotion: EmotionApologetic}
}

func (d *Dispatcher) collaboratorError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrCollaboratorTimeout)
	}
	return fmt.Errorf("%s: %w (%v)", op, ErrCollaboratorUnavailable, err)
}

// remember appends a memory item. Memory failures are logged, never fatal to
// the turn.
func (d *Dispatcher) remember(ctx context.Context, kind MemoryKind, payload map[string]string) {
	item := MemoryItem{Kind: kind, Payload: payload, CreatedAt: d.clock.Now()}
	if err := d.memory.Add(ctx, item); err != nil {
		d.logger.Warn("failed to record memory item", zap.String("kind", string(kind)), zap.Error(err))
	}
}
