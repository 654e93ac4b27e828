package whatsapp

import (
	"testing"
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func messageEvent(msg *waE2E.Message, fromMe, group bool) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender:   types.NewJID("6281234567890", types.DefaultUserServer),
				IsFromMe: fromMe,
				IsGroup:  group,
			},
			Timestamp: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		Message: msg,
	}
}

func TestTextFromEvent(t *testing.T) {
	tests := []struct {
		name   string
		evt    *events.Message
		wantOK bool
		text   string
	}{
		{
			name:   "conversation",
			evt:    messageEvent(&waE2E.Message{Conversation: proto.String("halo")}, false, false),
			wantOK: true,
			text:   "halo",
		},
		{
			name: "extended text",
			evt: messageEvent(&waE2E.Message{
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("aku stres")},
			}, false, false),
			wantOK: true,
			text:   "aku stres",
		},
		{name: "own message", evt: messageEvent(&waE2E.Message{Conversation: proto.String("x")}, true, false)},
		{name: "group message", evt: messageEvent(&waE2E.Message{Conversation: proto.String("x")}, false, true)},
		{name: "no text", evt: messageEvent(&waE2E.Message{}, false, false)},
		{name: "nil message", evt: messageEvent(nil, false, false)},
		{name: "nil event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TextFromEvent(tt.evt)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Text != tt.text || got.PhoneNumber != "6281234567890" {
				t.Errorf("unexpected message %+v", got)
			}
		})
	}
}

func TestAudioFromEvent(t *testing.T) {
	voice := &waE2E.AudioMessage{Mimetype: proto.String("audio/ogg; codecs=opus"), PTT: proto.Bool(true)}

	got, msg, ok := AudioFromEvent(messageEvent(&waE2E.Message{AudioMessage: voice}, false, false))
	if !ok || got != voice {
		t.Fatalf("voice note not detected")
	}
	if msg.PhoneNumber != "6281234567890" || msg.AudioMime != "audio/ogg; codecs=opus" || msg.Text != "" {
		t.Errorf("unexpected message %+v", msg)
	}

	if _, _, ok := AudioFromEvent(messageEvent(&waE2E.Message{AudioMessage: voice}, true, false)); ok {
		t.Error("own voice note should be skipped")
	}
	if _, _, ok := AudioFromEvent(messageEvent(&waE2E.Message{Conversation: proto.String("halo")}, false, false)); ok {
		t.Error("text message is not a voice note")
	}
}
