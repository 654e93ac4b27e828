package chat

import "TemanCerita/internal/entity"

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

type ResetRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// TurnResult is what the service reports back for one processed message.
type TurnResult struct {
	Response  string
	SessionID string
	Context   entity.DialogueContext
	Tag       string
	Outcome   Outcome
}

// Outcome names the routing branch a turn took. It is logged, never shown.
type Outcome string

const (
	OutcomeReset             Outcome = "reset"
	OutcomeThanks            Outcome = "thanks"
	OutcomeAskName           Outcome = "ask_name"
	OutcomeGreetByName       Outcome = "greet_by_name"
	OutcomeTip               Outcome = "tip"
	OutcomeDecline           Outcome = "decline"
	OutcomeTipReprompt       Outcome = "tip_reprompt"
	OutcomeUniversal         Outcome = "universal"
	OutcomeTopicOpened       Outcome = "topic_opened"
	OutcomeReasonMatched     Outcome = "reason_matched"
	OutcomeClarify           Outcome = "clarify"
	OutcomeForcedReset       Outcome = "forced_reset"
	OutcomeFallback          Outcome = "fallback"
	OutcomeClassifierTrouble Outcome = "classifier_trouble"
)
