package entity

import (
	"math/rand/v2"
	"sort"
	"strings"
)

const (
	NamePlaceholder = "{user_name}"
	NameSubstitute  = "kamu"

	generalSuffix = "_general"
	reasonInfix   = "_due_to_"
)

type IntentKind uint8

const (
	IntentKindOther     IntentKind = 0
	IntentKindGeneral   IntentKind = 1
	IntentKindReason    IntentKind = 2
	IntentKindUniversal IntentKind = 3
)

var IntentKindMap = map[IntentKind]string{
	IntentKindOther:     "other",
	IntentKindGeneral:   "general",
	IntentKindReason:    "reason",
	IntentKindUniversal: "universal",
}

func (k IntentKind) String() string {
	return IntentKindMap[k]
}

// IntentMeta is the static routing metadata of one intent tag. Topic links a
// general feeling to its specific reasons.
type IntentMeta struct {
	Tag   string     `json:"tag"`
	Topic string     `json:"topic,omitempty"`
	Kind  IntentKind `json:"kind"`
}

// TopicFromTag derives a topic from the tag naming convention:
// "<topic>_general" and "<topic>_due_to_<reason>". Other tags have none.
func TopicFromTag(tag string) string {
	if i := strings.Index(tag, reasonInfix); i > 0 {
		return tag[:i]
	}
	if strings.HasSuffix(tag, generalSuffix) && len(tag) > len(generalSuffix) {
		return strings.TrimSuffix(tag, generalSuffix)
	}
	return ""
}

// ResponseCatalog holds the static response tables. Every pool is a flat,
// non-empty list of templates.
type ResponseCatalog struct {
	Responses map[string][]string   `json:"responses" yaml:"responses"`
	Tips      map[string][]string   `json:"tips" yaml:"tips"`
	Declines  map[string][]string   `json:"declines" yaml:"declines"`
	Keywords  map[string][]string   `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Intents   map[string]IntentMeta `json:"intents" yaml:"-"`
}

func NewResponseCatalog() *ResponseCatalog {
	return &ResponseCatalog{
		Responses: make(map[string][]string),
		Tips:      make(map[string][]string),
		Declines:  make(map[string][]string),
		Keywords:  make(map[string][]string),
		Intents:   make(map[string]IntentMeta),
	}
}

func (c *ResponseCatalog) Lookup(tag string) ([]string, bool) {
	pool, ok := c.Responses[tag]
	return pool, ok && len(pool) > 0
}

func (c *ResponseCatalog) Tip(tag string) ([]string, bool) {
	pool, ok := c.Tips[tag]
	return pool, ok && len(pool) > 0
}

func (c *ResponseCatalog) Decline(tag string) ([]string, bool) {
	pool, ok := c.Declines[tag]
	return pool, ok && len(pool) > 0
}

// Meta returns the routing metadata of tag. Tags missing from Intents fall
// back to the naming convention so routing never depends on load order.
func (c *ResponseCatalog) Meta(tag string) IntentMeta {
	if meta, ok := c.Intents[tag]; ok {
		return meta
	}
	return IntentMeta{Tag: tag, Topic: TopicFromTag(tag), Kind: IntentKindOther}
}

// Known reports whether tag appears anywhere in the catalog.
func (c *ResponseCatalog) Known(tag string) bool {
	if _, ok := c.Intents[tag]; ok {
		return true
	}
	if _, ok := c.Responses[tag]; ok {
		return true
	}
	if _, ok := c.Tips[tag]; ok {
		return true
	}
	_, ok := c.Declines[tag]
	return ok
}

func (c *ResponseCatalog) Size() int {
	return len(c.Responses) + len(c.Tips) + len(c.Declines)
}

// Personalize replaces the name placeholder, using NameSubstitute for an
// empty name.
func Personalize(template, userName string) string {
	if userName == "" {
		userName = NameSubstitute
	}
	return strings.ReplaceAll(template, NamePlaceholder, userName)
}

// PickRandom returns a uniformly random element of pool. pick(n) must return
// a value in [0,n); nil uses math/rand/v2.
func PickRandom(pool []string, pick func(n int) int) string {
	if len(pool) == 0 {
		return ""
	}
	if pick == nil {
		pick = rand.IntN
	}
	return pool[pick(len(pool))]
}

// IndexIntents rebuilds Intents for every tag in the catalog and in the two
// routing sets. Explicit topics win over the naming convention.
func (c *ResponseCatalog) IndexIntents(general, universal []string, topics map[string]string) {
	generalSet := make(map[string]bool, len(general))
	for _, tag := range general {
		generalSet[tag] = true
	}
	universalSet := make(map[string]bool, len(universal))
	for _, tag := range universal {
		universalSet[tag] = true
	}

	tags := make(map[string]bool)
	for _, table := range []map[string][]string{c.Responses, c.Tips, c.Declines, c.Keywords} {
		for tag := range table {
			tags[tag] = true
		}
	}
	for tag := range generalSet {
		tags[tag] = true
	}
	for tag := range universalSet {
		tags[tag] = true
	}
	for tag := range topics {
		tags[tag] = true
	}

	c.Intents = make(map[string]IntentMeta, len(tags))
	for tag := range tags {
		topic, ok := topics[tag]
		if !ok {
			topic = TopicFromTag(tag)
		}

		kind := IntentKindOther
		switch {
		case universalSet[tag]:
			kind = IntentKindUniversal
		case generalSet[tag]:
			kind = IntentKindGeneral
		case strings.Contains(tag, reasonInfix):
			kind = IntentKindReason
		}

		c.Intents[tag] = IntentMeta{Tag: tag, Topic: topic, Kind: kind}
	}
}

// Tags lists every indexed intent tag in sorted order.
func (c *ResponseCatalog) Tags() []string {
	tags := make([]string, 0, len(c.Intents))
	for tag := range c.Intents {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
