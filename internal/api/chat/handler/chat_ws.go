package chatHandler

import (
	"TemanCerita/internal/api/chat"
	chatService "TemanCerita/internal/api/chat/service"
	contextPkg "TemanCerita/pkg/context"
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const wsIdleTimeout = 10 * time.Minute

// handleChatWebSocket treats every text frame {"message": ...} as one turn
// and answers with {"response": ...}.
func (h *ChatHandler) handleChatWebSocket(c *websocket.Conn) {
	sessionID := c.Query("session_id")
	switch {
	case h.sharedSession:
		sessionID = chatService.SharedSessionID
	case !validClientSessionID(sessionID):
		sessionID = h.utils.NewSessionID("ws")
	}

	h.log.WithField("session_id", sessionID).Info("Chat WebSocket client connected")
	defer h.log.WithField("session_id", sessionID).Info("Chat WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsIdleTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Chat WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.TextMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		reply := h.wsTurn(sessionID, message)

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}
		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *ChatHandler) wsTurn(sessionID string, frame []byte) chat.ChatResponse {
	requestID, _ := h.utils.NewULIDFromTimestamp(time.Now())

	var req chat.ChatRequest
	if err := json.Unmarshal(frame, &req); err != nil || h.validator.Struct(req) != nil {
		return chat.ChatResponse{Response: chat.EmptyMessageText}
	}

	ctx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result, err := h.chatService.ProcessMessage(ctx, sessionID, req.Message)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("WebSocket chat turn failed")
		return chat.ChatResponse{Response: replyForError(err)}
	}

	return chat.ChatResponse{Response: result.Response}
}
