package whatsapp

import (
	"TemanCerita/database/postgres"
	"TemanCerita/database/sqlite"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

const defaultDevicePath = "./storage/whatsmeow.db"

// Message is one inbound message. Voice notes carry Audio and no Text.
type Message struct {
	PhoneNumber string
	Text        string
	Audio       []byte
	AudioMime   string
	Timestamp   time.Time
}

type MessageHandler func(msg Message)

type IWhatsappSender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
	OnMessage(handler MessageHandler)
	Disconnect() error
	IsConnected() bool
}

type whatsappSender struct {
	client *whatsmeow.Client
}

// New logs into WhatsApp with the device stored in WHATSAPP_DB_DRIVER /
// WHATSAPP_DB_DSN (sqlite by default). An unpaired device prints a pairing
// QR code on stdout.
func New() (IWhatsappSender, error) {
	ctx := context.Background()
	driver, dsn := deviceStore()

	container, err := sqlstore.New(ctx, driver, dsn, waLog.Stdout("Database", "WARN", true))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to device store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", "WARN", true))

	connected := make(chan struct{}, 1)
	client.AddEventHandler(func(evt interface{}) {
		if _, ok := evt.(*events.Connected); ok {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})

	if client.Store.ID == nil {
		qrChan, _ := client.GetQRChannel(ctx)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					logrus.Info("Scan the QR code below with WhatsApp to pair this device")
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				} else {
					logrus.Infof("WhatsApp login event: %s", evt.Event)
				}
			}
		}()
	} else {
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	select {
	case <-connected:
		logrus.Info("WhatsApp connected")
	case <-time.After(2 * time.Minute):
		client.Disconnect()
		return nil, fmt.Errorf("connection timeout")
	}

	return &whatsappSender{
		client: client,
	}, nil
}

func deviceStore() (string, string) {
	driver := os.Getenv("WHATSAPP_DB_DRIVER")
	dsn := os.Getenv("WHATSAPP_DB_DSN")

	if driver == "postgres" {
		if dsn == "" {
			dsn = postgres.FormatDSN()
		}
		return driver, dsn
	}

	if dsn == "" {
		dsn = defaultDevicePath
	}
	return "sqlite3", sqlite.FormatDSN(dsn)
}

func (w *whatsappSender) SendMessage(ctx context.Context, phoneNumber, message string) error {
	jid := types.NewJID(strings.TrimPrefix(phoneNumber, "+"), types.DefaultUserServer)

	waMsg := &waE2E.Message{
		Conversation: proto.String(message),
	}

	_, err := w.client.SendMessage(ctx, jid, waMsg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// OnMessage registers handler for inbound private text messages and voice
// notes. Each message is handled on its own goroutine.
func (w *whatsappSender) OnMessage(handler MessageHandler) {
	w.client.AddEventHandler(func(evt interface{}) {
		msg, ok := evt.(*events.Message)
		if !ok {
			return
		}
		if inbound, ok := TextFromEvent(msg); ok {
			go handler(inbound)
			return
		}
		if voice, inbound, ok := AudioFromEvent(msg); ok {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				data, err := w.client.Download(ctx, voice)
				if err != nil {
					logrus.WithField("phone", inbound.PhoneNumber).Warnf("Failed to download voice note: %v", err)
					return
				}
				inbound.Audio = data
				handler(inbound)
			}()
		}
	})
}

// AudioFromEvent picks out a private voice note. The returned Message has no
// audio yet; the caller downloads it.
func AudioFromEvent(evt *events.Message) (*waE2E.AudioMessage, Message, bool) {
	if evt == nil || evt.Message == nil || evt.Info.IsFromMe || evt.Info.IsGroup {
		return nil, Message{}, false
	}

	voice := evt.Message.GetAudioMessage()
	if voice == nil {
		return nil, Message{}, false
	}

	return voice, Message{
		PhoneNumber: evt.Info.Sender.User,
		AudioMime:   voice.GetMimetype(),
		Timestamp:   evt.Info.Timestamp,
	}, true
}

// TextFromEvent extracts a private text message sent by someone else.
func TextFromEvent(evt *events.Message) (Message, bool) {
	if evt == nil || evt.Message == nil || evt.Info.IsFromMe || evt.Info.IsGroup {
		return Message{}, false
	}

	var text string
	switch {
	case evt.Message.GetConversation() != "":
		text = evt.Message.GetConversation()
	case evt.Message.GetExtendedTextMessage().GetText() != "":
		text = evt.Message.GetExtendedTextMessage().GetText()
	default:
		return Message{}, false
	}

	return Message{
		PhoneNumber: evt.Info.Sender.User,
		Text:        text,
		Timestamp:   evt.Info.Timestamp,
	}, true
}

func (w *whatsappSender) Disconnect() error {
	w.client.Disconnect()
	return nil
}

func (w *whatsappSender) IsConnected() bool {
	return w.client.IsConnected()
}
