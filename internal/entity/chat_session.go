package entity

import "time"

// DialogueContext is the step of the guided conversation a session is in.
type DialogueContext string

const (
	ContextNone                  DialogueContext = ""
	ContextAwaitingName          DialogueContext = "awaiting_name"
	ContextAwaitingFeeling       DialogueContext = "awaiting_feeling"
	ContextAwaitingReason        DialogueContext = "awaiting_reason"
	ContextAwaitingTipPermission DialogueContext = "awaiting_tip_permission"
	ContextConversationEnd       DialogueContext = "conversation_end"
)

var dialogueContextNames = map[DialogueContext]string{
	ContextNone:                  "none",
	ContextAwaitingName:          "awaiting_name",
	ContextAwaitingFeeling:       "awaiting_feeling",
	ContextAwaitingReason:        "awaiting_reason",
	ContextAwaitingTipPermission: "awaiting_tip_permission",
	ContextConversationEnd:       "conversation_end",
}

func (c DialogueContext) String() string {
	if name, ok := dialogueContextNames[c]; ok {
		return name
	}
	return "invalid(" + string(c) + ")"
}

func (c DialogueContext) Valid() bool {
	_, ok := dialogueContextNames[c]
	return ok
}

// ChatSession is the mutable state of one conversation.
type ChatSession struct {
	ID           string          `json:"id"`
	Context      DialogueContext `json:"context"`
	UserName     string          `json:"user_name"`
	CurrentTopic string          `json:"current_topic,omitempty"`
	LastTag      string          `json:"last_tag,omitempty"`
	FailCount    int             `json:"fail_count"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
}

func NewChatSession(id string, now time.Time) ChatSession {
	return ChatSession{
		ID:           id,
		Context:      ContextNone,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Reset puts every conversational field back to its initial value. Identity
// and timestamps are kept.
func (s *ChatSession) Reset() {
	s.Context = ContextNone
	s.UserName = ""
	s.CurrentTopic = ""
	s.LastTag = ""
	s.FailCount = 0
}

// IsInitial reports whether the conversational fields hold their initial values.
func (s ChatSession) IsInitial() bool {
	return s.Context == ContextNone &&
		s.UserName == "" &&
		s.CurrentTopic == "" &&
		s.LastTag == "" &&
		s.FailCount == 0
}
