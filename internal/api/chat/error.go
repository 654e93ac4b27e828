package chat

import "TemanCerita/pkg/response"

const (
	EmptyMessageText = "Pesan tidak boleh kosong"
	SessionBusyText  = "Pesan sebelumnya masih diproses, coba kirim lagi sebentar ya."
)

var (
	ErrEmptyMessage          = response.NewUserError(400, "message is empty", EmptyMessageText)
	ErrInvalidPayload        = response.NewUserError(400, "invalid chat payload", EmptyMessageText)
	ErrClassifierUnavailable = response.NewError(503, "intent classifier unavailable")
	ErrSessionStore          = response.NewError(500, "session store failure")
	ErrCatalogInvalid        = response.NewError(500, "response catalog invalid")
	ErrCatalogEmpty          = response.NewError(500, "response catalog is empty")
	ErrSessionNotFound       = response.NewError(404, "session not found")
	ErrSessionBusy           = response.NewUserError(409, "session locked by another turn", SessionBusyText)
)
