package chatService

const (
	ResetMessage       = "🔄 Obrolan telah direset.😊"
	ThanksTemplate     = "Sama-sama ya, %s 🌷"
	ThanksSubstitute   = "teman"
	AskNameMessage     = "Hai! Boleh aku tahu siapa namamu?"
	GreetTemplate      = "Hai %s! Gimana perasaanmu hari ini?"
	NoTipMessage       = "🙏 Maaf, aku belum punya tips khusus buat itu. Tapi kamu nggak sendiri ya 🤍"
	NoDeclineMessage   = "Aku ngerti kok, kadang kita cuma butuh didengarkan tanpa solusi dulu 🤍"
	TipRepromptMessage = "Kamu ingin aku bantu kasih tips? (Ya/Tidak)"
	TipOfferTemplate   = "%s\n\nMau aku bantu kasih tips untuk itu, %s?"
	ClassifierTrouble  = "Maaf, aku lagi kesulitan memahami pesanmu sekarang. Coba lagi sebentar lagi ya 🙏"
	defaultUniversal   = "Kamu bisa cari bantuan profesional ya, {user_name}"
	defaultGeneral     = "Ceritain ya, aku siap dengerin."
	defaultReason      = "Aku denger kok."
	defaultFallback    = "Maaf, aku belum punya jawaban untuk itu."
)

var ClarifyMessages = []string{
	"Hmm... aku belum yakin maksudmu 😥 Bisa dijelaskan dengan cara lain?",
	"Aku agak bingung nangkap maksud kamu. Bisa diperjelas?",
	"Maaf, aku belum paham betul. Bisa diulangi dengan kalimat yang berbeda?",
}

var (
	resetCommands  = wordSet("reset", "ulang", "mulai lagi", "ulang yuk")
	thanksCommands = wordSet("makasih", "terima kasih", "thanks", "thank you")
	affirmWords    = wordSet("iya", "ya", "mau", "boleh", "lanjut", "oke")
	negativeWords  = wordSet("tidak", "ga", "gak", "nggak", "skip", "gausah", "enggak")
)

// DefaultGeneralIntents are the broad feelings that open a topic.
var DefaultGeneralIntents = []string{
	"stress_general",
	"anxiety_general",
	"self_worth_general",
	"heartbreak_general",
	"loneliness_general",
	"grief_general",
	"depression_general",
}

// DefaultUniversalIntents are answered from any context without moving it.
var DefaultUniversalIntents = []string{"get_support_professional"}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}
