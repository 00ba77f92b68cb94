package core

import "fmt"

// Emotion labels attached to ActionResults and mapped to prosody hints by the
// response formatter.
const (
	EmotionNeutral    = "neutral"
	EmotionHappy      = "happy"
	EmotionExcited    = "excited"
	EmotionApologetic = "apologetic"
	EmotionCalm       = "calm"
)

// Response message keys.
const (
	msgEmailCount    = "email_count"
	msgNoEmails      = "no_emails"
	msgEmailRead     = "email_read"
	msgNoEmailRef    = "no_email_ref"
	msgOrganized     = "organized"
	msgDraftReady    = "draft_ready"
	msgSent          = "sent"
	msgNoDraft       = "no_draft"
	msgTimeMorning   = "time_morning"
	msgTimeAfternoon = "time_afternoon"
	msgTimeEvening   = "time_evening"
	msgWeather       = "weather"
	msgCalcResult    = "calc_result"
	msgDivideZero    = "divide_zero"
	msgBadExpression = "bad_expression"
	msgGreet         = "greet"
	msgHelp          = "help"
	msgGoodbye       = "goodbye"
	msgClarify       = "clarify"
	msgApology       = "apology"
	msgDraftFallback = "draft_fallback"
)

var responseTemplates = map[Language]map[string]string{
	LangEnglish: {
		msgEmailCount:    "You have %d emails. The latest is from %s about %s.",
		msgNoEmails:      "Your inbox is empty, nothing new.",
		msgEmailRead:     "Email from %s, subject %s. It says: %s",
		msgNoEmailRef:    "Which email do you mean? Fetch your inbox first.",
		msgOrganized:     "Done, I filed %d emails for you.",
		msgDraftReady:    "Here is the draft: %s. Say send the reply to confirm.",
		msgSent:          "Reply sent to %s.",
		msgNoDraft:       "There is no draft prepared. Say draft a reply first.",
		msgTimeMorning:   "Good morning! It is %s.",
		msgTimeAfternoon: "Good afternoon! It is %s.",
		msgTimeEvening:   "Good evening! It is %s.",
		msgWeather:       "In %s it is %.0f degrees, %s. Humidity %d%%, wind %.0f km/h.",
		msgCalcResult:    "%s %s %s equals %s.",
		msgDivideZero:    "I cannot divide by zero.",
		msgBadExpression: "I did not catch the numbers, try something like three plus four.",
		msgGreet:         "Hello! How can I help you today?",
		msgHelp:          "I can check your email, draft replies, tell you the time and weather, do math, and tell jokes.",
		msgGoodbye:       "Goodbye! Talk to you soon.",
		msgClarify:       "Sorry, I did not understand. Could you rephrase that?",
		msgApology:       "Sorry, I could not reach that service right now. Please try again.",
		msgDraftFallback: "Thank you for your message. I will get back to you shortly.",
	},
	LangArabic: {
		msgEmailCount:    "لديك %d رسائل. الأحدث من %s بخصوص %s.",
		msgNoEmails:      "صندوق الوارد فارغ، لا جديد.",
		msgEmailRead:     "رسالة من %s، الموضوع %s. تقول: %s",
		msgNoEmailRef:    "أي رسالة تقصد؟ افتح صندوق الوارد أولا.",
		msgOrganized:     "تم، رتبت %d رسائل.",
		msgDraftReady:    "هذه المسودة: %s. قل أرسل الرد للتأكيد.",
		msgSent:          "تم إرسال الرد إلى %s.",
		msgNoDraft:       "لا توجد مسودة جاهزة. قل حضر ردا أولا.",
		msgTimeMorning:   "صباح الخير! الساعة الآن %s.",
		msgTimeAfternoon: "طاب يومك! الساعة الآن %s.",
		msgTimeEvening:   "مساء الخير! الساعة الآن %s.",
		msgWeather:       "في %s الحرارة %.0f درجة، %s. الرطوبة %d%%، الرياح %.0f كم/س.",
		msgCalcResult:    "%s %s %s يساوي %s.",
		msgDivideZero:    "لا أستطيع القسمة على صفر.",
		msgBadExpression: "لم أفهم الأرقام، جرب مثلا ثلاثة زائد أربعة.",
		msgGreet:         "مرحبا! كيف أستطيع مساعدتك اليوم؟",
		msgHelp:          "أستطيع فحص بريدك، تحضير الردود، إخبارك بالوقت والطقس، الحساب، ورواية النكت.",
		msgGoodbye:       "مع السلامة! إلى اللقاء.",
		msgClarify:       "عذرا، لم أفهم. هل يمكنك إعادة الصياغة؟",
		msgApology:       "عذرا، تعذر الوصول إلى الخدمة الآن. حاول مرة أخرى.",
		msgDraftFallback: "شكرا على رسالتك. سأعود إليك قريبا.",
	},
	LangTunisian: {
		msgEmailCount:    "عندك %d ايميلات. الاخراني من %s على %s.",
		msgNoEmails:      "الانبوكس فارغ، مفماش جديد.",
		msgEmailRead:     "ايميل من %s، الموضوع %s. يقول: %s",
		msgNoEmailRef:    "اما ايميل تقصد؟ جيب الانبوكس الاول.",
		msgOrganized:     "تم، نظمتلك %d ايميلات.",
		msgDraftReady:    "هاو الرد المحضر: %s. قولي ابعت الرد باش نأكد.",
		msgSent:          "توة الرد تبعث لـ %s.",
		msgNoDraft:       "مفيش رد محضر. قولي حضرلي رد الأول.",
		msgTimeMorning:   "صباح الخير! الوقت توة %s.",
		msgTimeAfternoon: "يعيشك! الوقت توة %s.",
		msgTimeEvening:   "مساء الخير! الوقت توة %s.",
		msgWeather:       "في %s السخانة %.0f درجات، %s. الرطوبة %d%%، الريح %.0f كم/س.",
		msgCalcResult:    "%s %s %s يساوي %s.",
		msgDivideZero:    "منجمش نقسم على صفر.",
		msgBadExpression: "ما فهمتش الارقام، قول كيما ثلاثة زايد اربعة.",
		msgGreet:         "اهلا! شنجم نعملك اليوم؟",
		msgHelp:          "نجم نشوفلك الايميلات، نحضرلك ردود، نقولك الوقت والطقس، نحسبلك، ونحكيلك نكت.",
		msgGoodbye:       "بالسلامة! نراك من بعد.",
		msgClarify:       "سامحني، ما فهمتش. تنجم تعاود بطريقة اخرى؟",
		msgApology:       "سامحني، الخدمة ما جاوبتش توة. عاود جرب.",
		msgDraftFallback: "يعيشك على الميساج متاعك. نعاود نكلمك قريب.",
	},
}

// message renders a localized template, falling back to English when the
// language has no entry.
func message(lang Language, key string, args ...any) string {
	table, ok := responseTemplates[lang]
	if !ok {
		table = responseTemplates[LangEnglish]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl = responseTemplates[LangEnglish][key]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
