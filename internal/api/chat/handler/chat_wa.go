package chatHandler

import (
	"TemanCerita/internal/api/chat"
	chatService "TemanCerita/internal/api/chat/service"
	"TemanCerita/pkg/audio"
	contextPkg "TemanCerita/pkg/context"
	"TemanCerita/pkg/utils"
	"TemanCerita/pkg/whatsapp"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const voiceUnsupportedText = "Maaf, aku belum bisa mendengar pesan suaramu. Bisa diketik saja?"

// WhatsappChannel answers inbound WhatsApp messages, one session per sender.
// Voice notes are transcribed first when a transcriber is configured.
type WhatsappChannel struct {
	log         *logrus.Logger
	chatService chatService.IChatService
	sender      whatsapp.IWhatsappSender
	transcriber audio.ITranscriber
	utils       utils.IUtils
}

func NewWhatsappChannel(
	log *logrus.Logger,
	cs chatService.IChatService,
	sender whatsapp.IWhatsappSender,
	transcriber audio.ITranscriber,
	utils utils.IUtils,
) *WhatsappChannel {
	return &WhatsappChannel{
		log:         log,
		chatService: cs,
		sender:      sender,
		transcriber: transcriber,
		utils:       utils,
	}
}

func (w *WhatsappChannel) Start() {
	w.sender.OnMessage(w.HandleMessage)
	w.log.Info("WhatsApp chat channel listening")
}

func (w *WhatsappChannel) HandleMessage(msg whatsapp.Message) {
	requestID, _ := w.utils.NewULIDFromTimestamp(time.Now())
	sessionID := "wa:" + msg.PhoneNumber

	ctx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	text := msg.Text
	if text == "" && len(msg.Audio) > 0 {
		var ok bool
		if text, ok = w.transcribe(ctx, requestID, sessionID, msg); !ok {
			w.send(ctx, requestID, sessionID, msg.PhoneNumber, voiceUnsupportedText)
			return
		}
	}

	reply := chat.EmptyMessageText
	if strings.TrimSpace(text) != "" {
		result, err := w.chatService.ProcessMessage(ctx, sessionID, text)
		if err != nil {
			w.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("WhatsApp chat turn failed")
			reply = replyForError(err)
		} else {
			reply = result.Response
		}
	}

	w.send(ctx, requestID, sessionID, msg.PhoneNumber, reply)
}

func (w *WhatsappChannel) transcribe(ctx context.Context, requestID, sessionID string, msg whatsapp.Message) (string, bool) {
	if w.transcriber == nil {
		return "", false
	}

	text, err := w.transcriber.Transcribe(ctx, "voice.ogg", msg.Audio)
	if err != nil || strings.TrimSpace(text) == "" {
		fields := logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"mime":       msg.AudioMime,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		w.log.WithFields(fields).Warn("Voice note could not be transcribed")
		return "", false
	}

	return text, true
}

func (w *WhatsappChannel) send(ctx context.Context, requestID, sessionID, phone, text string) {
	if err := w.sender.SendMessage(ctx, phone, text); err != nil {
		w.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to send WhatsApp reply")
	}
}
