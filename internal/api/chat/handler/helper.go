package chatHandler

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/pkg/response"
	"errors"
)

const serverTroubleText = "Maaf, terjadi kesalahan pada server. Coba lagi nanti ya."

// replyForError is the text sent on channels that have no status code.
func replyForError(err error) string {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return chat.EmptyMessageText
	}
	var respErr *response.Error
	if errors.As(err, &respErr) && respErr.Code < 500 {
		return respErr.UserMessage()
	}
	return serverTroubleText
}
