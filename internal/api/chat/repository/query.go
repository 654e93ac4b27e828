package chatRepository

const (
	queryGetIntentTemplates = `
		SELECT
			tag, kind, pool, position, template
		FROM intent_templates
		WHERE is_active = :is_active
		ORDER BY tag, kind, pool, position
	`

	queryGetIntentTopics = `
		SELECT
			tag, topic
		FROM intent_topics
	`

	queryGetIntentKeywords = `
		SELECT
			tag, keyword
		FROM intent_keywords
		ORDER BY tag, keyword
	`
)

const (
	templateKindResponse = "response"
	templateKindTip      = "tip"
	templateKindDecline  = "decline"
)
