// Package respond renders action results for the TTS collaborator: final
// response text plus prosody hints derived from the result's emotion. The
// hints are metadata for the speech engine, never applied to the text.
package respond

import (
	"github.com/mikey/luca-assistant/internal/core"
)

// prosodyHints maps an emotion label to rate/volume/pitch deltas relative to
// the engine's defaults.
var prosodyHints = map[string]core.Prosody{
	core.EmotionNeutral:    {},
	core.EmotionHappy:      {Rate: 20, Volume: 0.1, Pitch: 1},
	core.EmotionExcited:    {Rate: 30, Volume: 0.2, Pitch: 2},
	core.EmotionCalm:       {Rate: -10, Volume: 0},
	core.EmotionApologetic: {Rate: -15, Volume: -0.05, Pitch: -1},
}

// fallbackText is spoken when an action produced no response at all, which
// should not happen but must not reach the TTS engine as silence.
var fallbackText = map[core.Language]string{
	core.LangEnglish:  "Sorry, something went wrong.",
	core.LangArabic:   "عذرا، حدث خطأ ما.",
	core.LangTunisian: "سامحني، صارت غلطة.",
}

// Formatter is a pure renderer; it holds no state.
type Formatter struct{}

// NewFormatter returns the formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format renders one action result into spoken text and prosody hints.
func (f *Formatter) Format(result core.ActionResult, lang core.Language) (string, core.Prosody) {
	text := result.Response
	if text == "" {
		text = fallbackText[lang]
		if text == "" {
			text = fallbackText[core.LangEnglish]
		}
	}

	prosody, ok := prosodyHints[result.Emotion]
	if !ok {
		prosody = prosodyHints[core.EmotionNeutral]
	}
	return text, prosody
}
