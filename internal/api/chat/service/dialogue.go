package chatService

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	contextPkg "TemanCerita/pkg/context"
	"TemanCerita/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type DialogueConfig struct {
	ConfidenceThreshold float64
	MaxFails            int
	ClassifierTimeout   time.Duration
}

func DefaultDialogueConfig() DialogueConfig {
	return DialogueConfig{
		ConfidenceThreshold: 0.2,
		MaxFails:            3,
		ClassifierTimeout:   5 * time.Second,
	}
}

// Dialogue is the guided conversation state machine. It holds no session
// state of its own; every turn mutates the session it is given.
type Dialogue struct {
	log        *logrus.Logger
	catalog    *entity.ResponseCatalog
	classifier nlp.IClassifier
	cfg        DialogueConfig
	pick       func(n int) int
}

func NewDialogue(
	log *logrus.Logger,
	catalog *entity.ResponseCatalog,
	classifier nlp.IClassifier,
	cfg DialogueConfig,
) *Dialogue {
	defaults := DefaultDialogueConfig()
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if cfg.MaxFails <= 0 {
		cfg.MaxFails = defaults.MaxFails
	}
	if cfg.ClassifierTimeout <= 0 {
		cfg.ClassifierTimeout = defaults.ClassifierTimeout
	}

	return &Dialogue{
		log:        log,
		catalog:    catalog,
		classifier: classifier,
		cfg:        cfg,
	}
}

// Reset clears the session and returns the confirmation text.
func (d *Dialogue) Reset(session *entity.ChatSession) chat.TurnResult {
	session.Reset()
	return d.result(session, ResetMessage, "", chat.OutcomeReset)
}

// Step applies one user message to session. When the classifier fails the
// returned error wraps chat.ErrClassifierUnavailable, the result carries the
// trouble message and session is left as it was.
func (d *Dialogue) Step(ctx context.Context, session *entity.ChatSession, raw string) (chat.TurnResult, error) {
	command := nlp.Fold(raw)

	if inSet(resetCommands, command) {
		return d.Reset(session), nil
	}

	if inSet(thanksCommands, command) {
		name := session.UserName
		if name == "" {
			name = ThanksSubstitute
		}
		return d.result(session, fmt.Sprintf(ThanksTemplate, name), "", chat.OutcomeThanks), nil
	}

	current := session.Context
	if !current.Valid() {
		d.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"context":    current.String(),
		}).Warn("Session has unknown context, starting over")
		current = entity.ContextNone
	}

	switch current {
	case entity.ContextNone:
		session.Context = entity.ContextAwaitingName
		return d.result(session, AskNameMessage, "", chat.OutcomeAskName), nil

	case entity.ContextAwaitingName:
		session.UserName = nlp.ExtractName(nlp.Normalize(raw))
		session.Context = entity.ContextAwaitingFeeling
		return d.result(session, fmt.Sprintf(GreetTemplate, session.UserName), "", chat.OutcomeGreetByName), nil

	case entity.ContextAwaitingTipPermission:
		return d.answerTipPermission(session, command), nil
	}

	return d.route(ctx, session, raw)
}

func (d *Dialogue) answerTipPermission(session *entity.ChatSession, answer string) chat.TurnResult {
	switch {
	case inSet(affirmWords, answer):
		session.Context = entity.ContextConversationEnd
		if pool, ok := d.catalog.Tip(session.LastTag); ok {
			return d.result(session, d.personalize(entity.PickRandom(pool, d.pick), session), session.LastTag, chat.OutcomeTip)
		}
		return d.result(session, NoTipMessage, session.LastTag, chat.OutcomeTip)

	case inSet(negativeWords, answer):
		session.Context = entity.ContextConversationEnd
		if pool, ok := d.catalog.Decline(session.LastTag); ok {
			return d.result(session, d.personalize(entity.PickRandom(pool, d.pick), session), session.LastTag, chat.OutcomeDecline)
		}
		return d.result(session, NoDeclineMessage, session.LastTag, chat.OutcomeDecline)
	}

	return d.result(session, TipRepromptMessage, session.LastTag, chat.OutcomeTipReprompt)
}

func (d *Dialogue) route(ctx context.Context, session *entity.ChatSession, raw string) (chat.TurnResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	prediction, err := d.classify(ctx, nlp.Normalize(raw))
	if err != nil {
		d.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Intent classifier failed")
		return d.result(session, ClassifierTrouble, "", chat.OutcomeClassifierTrouble), err
	}

	tag := prediction.Tag
	meta := d.catalog.Meta(tag)

	d.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": session.ID,
		"tag":        tag,
		"confidence": prediction.Confidence,
		"context":    session.Context.String(),
	}).Debug("Utterance classified")

	if meta.Kind == entity.IntentKindUniversal {
		session.FailCount = 0
		template := d.firstTemplate(tag, defaultUniversal)
		return d.result(session, d.personalize(template, session), tag, chat.OutcomeUniversal), nil
	}

	if session.Context == entity.ContextAwaitingFeeling && meta.Kind == entity.IntentKindGeneral {
		topic := meta.Topic
		if topic == "" {
			topic = tag
		}
		session.CurrentTopic = topic
		session.Context = entity.ContextAwaitingReason
		session.FailCount = 0

		template := defaultGeneral
		if pool, ok := d.catalog.Lookup(tag); ok {
			template = entity.PickRandom(pool, d.pick)
		}
		return d.result(session, d.personalize(template, session), tag, chat.OutcomeTopicOpened), nil
	}

	if session.Context == entity.ContextAwaitingReason && session.CurrentTopic != "" && meta.Topic == session.CurrentTopic {
		session.LastTag = tag
		session.Context = entity.ContextAwaitingTipPermission
		session.FailCount = 0

		base := d.personalize(d.firstTemplate(tag, defaultReason), session)
		name := session.UserName
		if name == "" {
			name = entity.NameSubstitute
		}
		return d.result(session, fmt.Sprintf(TipOfferTemplate, base, name), tag, chat.OutcomeReasonMatched), nil
	}

	if prediction.Confidence < d.cfg.ConfidenceThreshold {
		session.FailCount++
		if session.FailCount >= d.cfg.MaxFails {
			d.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": session.ID,
				"fail_count": session.FailCount,
			}).Info("Too many unclear messages, resetting session")
			session.Reset()
			return d.result(session, ResetMessage, tag, chat.OutcomeForcedReset), nil
		}
		return d.result(session, entity.PickRandom(ClarifyMessages, d.pick), tag, chat.OutcomeClarify), nil
	}

	session.FailCount = 0

	pool, ok := d.catalog.Lookup(tag)
	if !ok {
		fields := logrus.Fields{
			"request_id": requestID,
			"session_id": session.ID,
			"tag":        tag,
		}
		if d.catalog.Known(tag) {
			d.log.WithFields(fields).Info("Intent tag has no authored template")
		} else {
			d.log.WithFields(fields).Warn("Intent tag outside catalog")
		}
		return d.result(session, defaultFallback, tag, chat.OutcomeFallback), nil
	}

	return d.result(session, d.personalize(entity.PickRandom(pool, d.pick), session), tag, chat.OutcomeFallback), nil
}

func (d *Dialogue) classify(ctx context.Context, text string) (*nlp.Classification, error) {
	if d.classifier == nil {
		return nil, fmt.Errorf("%w: no classifier configured", chat.ErrClassifierUnavailable)
	}

	c, cancel := context.WithTimeout(ctx, d.cfg.ClassifierTimeout)
	defer cancel()

	prediction, err := d.classifier.Classify(c, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s", chat.ErrClassifierUnavailable, d.cfg.ClassifierTimeout)
		}
		return nil, fmt.Errorf("%w: %v", chat.ErrClassifierUnavailable, err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("%w: empty prediction", chat.ErrClassifierUnavailable)
	}

	return &nlp.Classification{
		Tag:        prediction.Tag,
		Confidence: nlp.ClampConfidence(prediction.Confidence),
	}, nil
}

func (d *Dialogue) firstTemplate(tag, fallback string) string {
	if pool, ok := d.catalog.Lookup(tag); ok {
		return pool[0]
	}
	return fallback
}

func (d *Dialogue) personalize(template string, session *entity.ChatSession) string {
	return entity.Personalize(template, session.UserName)
}

func (d *Dialogue) result(session *entity.ChatSession, text, tag string, outcome chat.Outcome) chat.TurnResult {
	return chat.TurnResult{
		Response:  text,
		SessionID: session.ID,
		Context:   session.Context,
		Tag:       tag,
		Outcome:   outcome,
	}
}
