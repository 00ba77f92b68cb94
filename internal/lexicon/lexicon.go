// Package lexicon holds the static language-keyed tables the pipeline
// matches against: wake phrases, intent pattern rules, the city gazetteer
// and the joke/quote banks. No behavior lives here.
package lexicon

import (
	"github.com/mikey/luca-assistant/internal/core"
)

// Rule is one pattern for an intent. A contiguous match of Phrase in the
// normalized utterance scores 1.0; a scattered match of all its tokens
// scores Weight.
type Rule struct {
	Phrase string
	Weight float64
}

// Lexicon bundles every per-language table. Phrases are stored normalized
// (lowercase, no diacritics, arabizi digits folded).
type Lexicon struct {
	wake   map[core.Language][]string
	rules  map[core.Language]map[core.IntentName][]Rule
	cities map[string]string
	jokes  map[core.Language][]string
	quotes map[core.Language][]string
}

// WakePhrases returns the configured wake phrases for a language.
func (l *Lexicon) WakePhrases(lang core.Language) []string {
	return l.wake[lang]
}

// Rules returns the pattern rules of one intent for a language.
func (l *Lexicon) Rules(lang core.Language, intent core.IntentName) []Rule {
	byIntent, ok := l.rules[lang]
	if !ok {
		return nil
	}
	return byIntent[intent]
}

// Languages returns every language the lexicon has rules for.
func (l *Lexicon) Languages() []core.Language {
	return []core.Language{core.LangEnglish, core.LangArabic, core.LangTunisian}
}

// CanonicalCity maps a normalized alias to the canonical city name used by
// the weather collaborator. Empty string means no gazetteer hit.
func (l *Lexicon) CanonicalCity(alias string) string {
	return l.cities[alias]
}

// Jokes returns the joke bank for a language.
func (l *Lexicon) Jokes(lang core.Language) []string {
	return l.jokes[lang]
}

// Quotes returns the quote bank for a language.
func (l *Lexicon) Quotes(lang core.Language) []string {
	return l.quotes[lang]
}

// Default builds the built-in trilingual lexicon.
func Default() *Lexicon {
	return &Lexicon{
		wake:   wakePhrases,
		rules:  intentRules,
		cities: cityGazetteer,
		jokes:  jokeBank,
		quotes: quoteBank,
	}
}

var wakePhrases = map[core.Language][]string{
	core.LangEnglish: {"hey luca", "ok luca", "luca", "wake up luca"},
	core.LangArabic:  {"يا لوكا", "مرحبا لوكا", "لوكا"},
	core.LangTunisian: {"اهلا لوكا", "يا لوكا", "لوكا", "ya luca", "ahla luca"},
}

var intentRules = map[core.Language]map[core.IntentName][]Rule{
	core.LangEnglish: {
		core.IntentFetchEmail: {
			{Phrase: "check my inbox", Weight: 0.8},
			{Phrase: "get my emails", Weight: 0.8},
			{Phrase: "show me my emails", Weight: 0.8},
			{Phrase: "any new emails", Weight: 0.7},
			{Phrase: "fetch emails", Weight: 0.7},
			{Phrase: "inbox", Weight: 0.6},
		},
		core.IntentReadEmail: {
			{Phrase: "read the email", Weight: 0.8},
			{Phrase: "read my email", Weight: 0.8},
			{Phrase: "read the next email", Weight: 0.9},
			{Phrase: "what does it say", Weight: 0.6},
		},
		core.IntentDraftReply: {
			{Phrase: "draft a reply", Weight: 0.9},
			{Phrase: "prepare a reply", Weight: 0.9},
			{Phrase: "write a response", Weight: 0.8},
			{Phrase: "help me reply", Weight: 0.7},
		},
		core.IntentSendReply: {
			{Phrase: "send the reply", Weight: 0.9},
			{Phrase: "send it", Weight: 0.8},
			{Phrase: "send the email", Weight: 0.8},
			{Phrase: "go ahead and send", Weight: 0.7},
		},
		core.IntentOrganizeEmail: {
			{Phrase: "organize my emails", Weight: 0.9},
			{Phrase: "sort my inbox", Weight: 0.8},
			{Phrase: "tidy up my emails", Weight: 0.8},
		},
		core.IntentGetTime: {
			{Phrase: "what time is it", Weight: 0.9},
			{Phrase: "tell me the time", Weight: 0.8},
			{Phrase: "current time", Weight: 0.8},
			{Phrase: "time please", Weight: 0.6},
		},
		core.IntentGetWeather: {
			{Phrase: "what is the weather", Weight: 0.9},
			{Phrase: "how is the weather", Weight: 0.8},
			{Phrase: "weather forecast", Weight: 0.8},
			{Phrase: "is it raining", Weight: 0.7},
			{Phrase: "temperature", Weight: 0.6},
		},
		core.IntentTellJoke: {
			{Phrase: "tell me a joke", Weight: 0.9},
			{Phrase: "make me laugh", Weight: 0.8},
			{Phrase: "something funny", Weight: 0.7},
		},
		core.IntentCalculate: {
			{Phrase: "calculate", Weight: 0.8},
			{Phrase: "how much is", Weight: 0.7},
			{Phrase: "what is the sum of", Weight: 0.7},
		},
		core.IntentGetQuote: {
			{Phrase: "give me a quote", Weight: 0.9},
			{Phrase: "motivate me", Weight: 0.8},
			{Phrase: "inspirational quote", Weight: 0.8},
		},
		core.IntentGreet: {
			{Phrase: "hello", Weight: 0.8},
			{Phrase: "good morning", Weight: 0.8},
			{Phrase: "good evening", Weight: 0.8},
			{Phrase: "how are you", Weight: 0.7},
			{Phrase: "hi", Weight: 0.6},
		},
		core.IntentHelp: {
			{Phrase: "what can you do", Weight: 0.9},
			{Phrase: "help me", Weight: 0.8},
			{Phrase: "help", Weight: 0.7},
		},
		core.IntentGoodbye: {
			{Phrase: "goodbye", Weight: 0.9},
			{Phrase: "good night", Weight: 0.8},
			{Phrase: "see you later", Weight: 0.8},
			{Phrase: "bye", Weight: 0.7},
		},
	},
	core.LangArabic: {
		core.IntentFetchEmail: {
			{Phrase: "اعطني البريد", Weight: 0.8},
			{Phrase: "افتح صندوق الوارد", Weight: 0.8},
			{Phrase: "هل وصلني بريد جديد", Weight: 0.7},
			{Phrase: "الرسائل الجديدة", Weight: 0.7},
		},
		core.IntentReadEmail: {
			{Phrase: "اقرا الرسالة", Weight: 0.8},
			{Phrase: "اقرا البريد", Weight: 0.8},
			{Phrase: "الرسالة التالية", Weight: 0.8},
		},
		core.IntentDraftReply: {
			{Phrase: "حضر ردا", Weight: 0.9},
			{Phrase: "اكتب ردا", Weight: 0.8},
			{Phrase: "جهز الجواب", Weight: 0.8},
		},
		core.IntentSendReply: {
			{Phrase: "ارسل الرد", Weight: 0.9},
			{Phrase: "ارسلها", Weight: 0.8},
			{Phrase: "ابعث الرد", Weight: 0.8},
		},
		core.IntentOrganizeEmail: {
			{Phrase: "نظم البريد", Weight: 0.9},
			{Phrase: "رتب الرسائل", Weight: 0.8},
		},
		core.IntentGetTime: {
			{Phrase: "كم الساعة", Weight: 0.9},
			{Phrase: "ما الوقت", Weight: 0.8},
			{Phrase: "الوقت الحالي", Weight: 0.8},
		},
		core.IntentGetWeather: {
			{Phrase: "كيف الطقس", Weight: 0.9},
			{Phrase: "ما حالة الجو", Weight: 0.8},
			{Phrase: "درجة الحرارة", Weight: 0.7},
		},
		core.IntentTellJoke: {
			{Phrase: "احك لي نكتة", Weight: 0.9},
			{Phrase: "اضحكني", Weight: 0.8},
			{Phrase: "نكتة", Weight: 0.6},
		},
		core.IntentCalculate: {
			{Phrase: "احسب لي", Weight: 0.8},
			{Phrase: "احسب", Weight: 0.7},
			{Phrase: "كم يساوي", Weight: 0.7},
		},
		core.IntentGetQuote: {
			{Phrase: "اعطني حكمة", Weight: 0.9},
			{Phrase: "مقولة تحفيزية", Weight: 0.8},
		},
		core.IntentGreet: {
			{Phrase: "السلام عليكم", Weight: 0.9},
			{Phrase: "صباح الخير", Weight: 0.8},
			{Phrase: "مساء الخير", Weight: 0.8},
			{Phrase: "مرحبا", Weight: 0.7},
			{Phrase: "كيف حالك", Weight: 0.7},
		},
		core.IntentHelp: {
			{Phrase: "ماذا تستطيع ان تفعل", Weight: 0.9},
			{Phrase: "ساعدني", Weight: 0.8},
			{Phrase: "مساعدة", Weight: 0.7},
		},
		core.IntentGoodbye: {
			{Phrase: "مع السلامة", Weight: 0.9},
			{Phrase: "الى اللقاء", Weight: 0.8},
			{Phrase: "وداعا", Weight: 0.8},
		},
	},
	core.LangTunisian: {
		core.IntentFetchEmail: {
			{Phrase: "اعطيني الايميلات", Weight: 0.9},
			{Phrase: "اعطيني الايميل", Weight: 0.8},
			{Phrase: "شوف الانبوكس", Weight: 0.8},
			{Phrase: "شنوة عندي في البريد", Weight: 0.7},
			{Phrase: "aatini el emails", Weight: 0.8},
			{Phrase: "chouf inbox", Weight: 0.7},
		},
		core.IntentReadEmail: {
			{Phrase: "اقرا الايميل", Weight: 0.9},
			{Phrase: "اقرالي الايميل", Weight: 0.8},
			{Phrase: "الايميل الجاي", Weight: 0.8},
			{Phrase: "akra el email", Weight: 0.8},
		},
		core.IntentDraftReply: {
			{Phrase: "حضرلي رد", Weight: 0.9},
			{Phrase: "حضر رد", Weight: 0.8},
			{Phrase: "اكتبلي جواب", Weight: 0.8},
			{Phrase: "hadherli radd", Weight: 0.8},
		},
		core.IntentSendReply: {
			{Phrase: "ابعت الرد", Weight: 0.9},
			{Phrase: "ابعتها", Weight: 0.8},
			{Phrase: "ابعث الجواب", Weight: 0.8},
			{Phrase: "abaath el radd", Weight: 0.8},
		},
		core.IntentOrganizeEmail: {
			{Phrase: "نظملي الايميلات", Weight: 0.9},
			{Phrase: "نظم الايميلات", Weight: 0.8},
			{Phrase: "رتب البريد", Weight: 0.8},
			{Phrase: "nadhemli el emails", Weight: 0.8},
		},
		core.IntentGetTime: {
			{Phrase: "قداش الوقت", Weight: 0.9},
			{Phrase: "شنية الساعة", Weight: 0.8},
			{Phrase: "الوقت توة", Weight: 0.7},
			{Phrase: "kadech el wakt", Weight: 0.8},
		},
		core.IntentGetWeather: {
			{Phrase: "كيفاش الطقس", Weight: 0.9},
			{Phrase: "شنية حالة الجو", Weight: 0.8},
			{Phrase: "الطقس توة", Weight: 0.7},
			{Phrase: "kifech el taks", Weight: 0.8},
		},
		core.IntentTellJoke: {
			{Phrase: "اعطيني نكتة", Weight: 0.9},
			{Phrase: "قولي نكتة", Weight: 0.8},
			{Phrase: "ضحكني", Weight: 0.7},
			{Phrase: "aatini nokta", Weight: 0.8},
		},
		core.IntentCalculate: {
			{Phrase: "احسبلي", Weight: 0.9},
			{Phrase: "احسب", Weight: 0.7},
			{Phrase: "قداش يساوي", Weight: 0.7},
			{Phrase: "ahsebli", Weight: 0.8},
		},
		core.IntentGetQuote: {
			{Phrase: "اعطيني حكمة", Weight: 0.9},
			{Phrase: "كلمة تشجعني", Weight: 0.8},
		},
		core.IntentGreet: {
			{Phrase: "اهلا وينك", Weight: 0.8},
			{Phrase: "كيفاش حالك", Weight: 0.8},
			{Phrase: "شنحوالك", Weight: 0.8},
			{Phrase: "اهلا", Weight: 0.6},
			{Phrase: "ahla", Weight: 0.6},
		},
		core.IntentHelp: {
			{Phrase: "شنجم نعمل", Weight: 0.8},
			{Phrase: "عاوني", Weight: 0.8},
			{Phrase: "شنية تنجم تعمل", Weight: 0.9},
		},
		core.IntentGoodbye: {
			{Phrase: "باي باي", Weight: 0.9},
			{Phrase: "بالسلامة", Weight: 0.8},
			{Phrase: "نراك من بعد", Weight: 0.8},
			{Phrase: "bay bay", Weight: 0.8},
		},
	},
}

// cityGazetteer maps normalized aliases in all three languages to the
// canonical names the weather collaborator understands.
var cityGazetteer = map[string]string{
	"tunis":    "Tunis",
	"تونس":     "Tunis",
	"sfax":     "Sfax",
	"صفاقس":    "Sfax",
	"sousse":   "Sousse",
	"سوسة":     "Sousse",
	"bizerte":  "Bizerte",
	"بنزرت":    "Bizerte",
	"kairouan": "Kairouan",
	"القيروان": "Kairouan",
	"gabes":    "Gabes",
	"قابس":     "Gabes",
	"monastir": "Monastir",
	"المنستير": "Monastir",
	"paris":    "Paris",
	"باريس":    "Paris",
	"london":   "London",
	"لندن":     "London",
	"cairo":    "Cairo",
	"القاهرة":  "Cairo",
	"new york": "New York",
	"نيويورك":  "New York",
}

var jokeBank = map[core.Language][]string{
	core.LangEnglish: {
		"Why don't scientists trust atoms? Because they make up everything!",
		"Why did the scarecrow win an award? He was outstanding in his field!",
		"Why don't eggs tell jokes? They'd crack each other up!",
		"What do you call a fake noodle? An impasta!",
		"Why did the math book look so sad? Because it had too many problems!",
	},
	core.LangArabic: {
		"قال المعلم للتلميذ: لماذا تأخرت؟ قال: بسبب اللافتة. قال: أي لافتة؟ قال: المكتوب عليها مدرسة، خففوا السرعة!",
		"واحد سأل صديقه: لماذا تضع نظارة عند النوم؟ قال: حتى أرى الأحلام بوضوح!",
		"طبيب يقول لمريضه: عندي خبر جيد وخبر سيئ. المريض: ابدأ بالجيد. الطبيب: سنسمي المرض باسمك!",
	},
	core.LangTunisian: {
		"مرة واحد قعد يحكي مع روحو، قالولو علاش؟ قالهم باش نضمن اللي فما حد يسمع فيا!",
		"واحد مشى للحانوت قال اعطيني حاجة باردة، اعطاه الحساب!",
		"قالوا لواحد: شنية أحسن حاجة في الصباح؟ قال: اللي تعملها في العشية!",
	},
}

var quoteBank = map[core.Language][]string{
	core.LangEnglish: {
		"The only way to do great work is to love what you do. - Steve Jobs",
		"Success is not final, failure is not fatal: it is the courage to continue that counts. - Winston Churchill",
		"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
		"The way to get started is to quit talking and begin doing. - Walt Disney",
	},
	core.LangArabic: {
		"من جد وجد ومن زرع حصد.",
		"العلم نور والجهل ظلام.",
		"إذا لم تكن تعرف إلى أين تذهب، فكل الطرق ستوصلك إلى هناك.",
	},
	core.LangTunisian: {
		"اللي يحب العالي يصبر على الشقى العالي.",
		"اخدم يا خدام على قد لحافك مد رجليك.",
		"اللي ما عندوش ما يخسر، ما عندوش ما يربح.",
	},
}
