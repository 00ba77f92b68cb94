// Package nlu maps normalized utterances to intents using the lexicon's
// pattern rules, with per-rule confidence weights and entity extraction.
package nlu

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/lexicon"
)

// Classifier resolves utterances to intents. Classification is total: every
// call returns a defined intent, falling back to unknown.
type Classifier struct {
	lex           *lexicon.Lexicon
	threshold     float64
	crossLanguage bool
	logger        *zap.Logger
}

// NewClassifier creates a classifier with the given confidence threshold.
// crossLanguage enables matching against other languages' rules when the
// active language scores zero.
func NewClassifier(lex *lexicon.Lexicon, threshold float64, crossLanguage bool, logger *zap.Logger) *Classifier {
	return &Classifier{
		lex:           lex,
		threshold:     threshold,
		crossLanguage: crossLanguage,
		logger:        logger,
	}
}

// Classify maps one utterance to an intent. The memory snapshot is consulted
// for ellipsis resolution only; Classify never writes memory.
func (c *Classifier) Classify(utt core.Utterance, snapshot core.MemorySnapshot) core.Intent {
	text := Normalize(utt.Text)
	if text == "" {
		return core.Intent{Name: core.IntentUnknown, Confidence: 0, Entities: map[string]string{}, Utterance: utt}
	}

	name, confidence := c.scoreLanguage(text, utt.Language)

	// Cross-language fallback only when the active language matched nothing.
	if confidence == 0 && c.crossLanguage {
		for _, lang := range c.lex.Languages() {
			if lang == utt.Language {
				continue
			}
			if n, conf := c.scoreLanguage(text, lang); conf > confidence {
				name, confidence = n, conf
			}
		}
	}

	entities := c.extractEntities(name, text)
	c.resolveEllipsis(name, entities, snapshot)

	if confidence < c.threshold {
		c.logger.Debug("intent below threshold, downgrading to unknown",
			zap.String("intent", string(name)),
			zap.Float64("confidence", confidence),
			zap.Float64("threshold", c.threshold))
		return core.Intent{
			Name:          core.IntentUnknown,
			Confidence:    confidence,
			Entities:      map[string]string{},
			Utterance:     utt,
			NeedsFallback: true,
		}
	}

	c.logger.Debug("classified utterance",
		zap.String("intent", string(name)),
		zap.Float64("confidence", confidence),
		zap.String("language", string(utt.Language)))

	return core.Intent{
		Name:       name,
		Confidence: confidence,
		Entities:   entities,
		Utterance:  utt,
	}
}

// scoreLanguage evaluates every intent's rules for one language and returns
// the winner. Ties break on rule specificity (literal tokens matched), then
// on intent declaration order.
func (c *Classifier) scoreLanguage(text string, lang core.Language) (core.IntentName, float64) {
	best := core.IntentUnknown
	bestConf := 0.0
	bestSpecificity := 0

	for _, intent := range core.AllIntents {
		for _, rule := range c.lex.Rules(lang, intent) {
			conf, specificity := matchRule(text, rule)
			if conf > bestConf || (conf == bestConf && conf > 0 && specificity > bestSpecificity) {
				best = intent
				bestConf = conf
				bestSpecificity = specificity
			}
		}
	}
	return best, bestConf
}

// matchRule scores one rule against normalized text. A contiguous phrase hit
// is an exact match (1.0); all tokens present but scattered scores the
// rule's weight. Specificity is the number of literal tokens in the phrase.
func matchRule(text string, rule lexicon.Rule) (float64, int) {
	phrase := Normalize(rule.Phrase)
	if phrase == "" {
		return 0, 0
	}
	tokens := strings.Fields(phrase)

	if strings.Contains(" "+text+" ", " "+phrase+" ") {
		return 1.0, len(tokens)
	}

	textTokens := strings.Fields(text)
	set := make(map[string]struct{}, len(textTokens))
	for _, t := range textTokens {
		set[t] = struct{}{}
	}
	for _, t := range tokens {
		if _, ok := set[t]; !ok {
			return 0, 0
		}
	}
	return rule.Weight, len(tokens)
}

// resolveEllipsis fills a missing email reference ("send it", "ابعتها")
// from the most recent email_context memory item. Only reply intents
// resolve this way; read_email without an explicit reference walks the
// fetched list by index, so its entity stays empty here.
func (c *Classifier) resolveEllipsis(name core.IntentName, entities map[string]string, snapshot core.MemorySnapshot) {
	switch name {
	case core.IntentSendReply, core.IntentDraftReply:
	default:
		return
	}
	if entities[core.EntityEmailID] != "" {
		return
	}
	if item, ok := snapshot.Recent(core.MemoryEmailContext); ok {
		if id := item.Payload["email_id"]; id != "" {
			entities[core.EntityEmailID] = id
		}
	}
}
