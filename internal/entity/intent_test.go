package entity

import "testing"

func TestTopicFromTag(t *testing.T) {
	cases := map[string]string{
		"stress_general":             "stress",
		"self_worth_general":         "self_worth",
		"stress_due_to_academic":     "stress",
		"self_worth_due_to_bullying": "self_worth",
		"get_support_professional":   "",
		"_general":                   "",
		"greeting":                   "",
	}
	for tag, want := range cases {
		if got := TopicFromTag(tag); got != want {
			t.Errorf("TopicFromTag(%q) = %q, want %q", tag, got, want)
		}
	}
}

func TestIndexIntents(t *testing.T) {
	c := NewResponseCatalog()
	c.Responses["stress_general"] = []string{"a"}
	c.Responses["stress_due_to_academic"] = []string{"b"}
	c.Responses["get_support_professional"] = []string{"c"}
	c.Tips["heartbreak_due_to_cheating"] = []string{"d"}
	c.Responses["greeting"] = []string{"e"}

	c.IndexIntents(
		[]string{"stress_general", "anxiety_general"},
		[]string{"get_support_professional"},
		map[string]string{"greeting": "smalltalk"},
	)

	cases := []struct {
		tag   string
		topic string
		kind  IntentKind
	}{
		{"stress_general", "stress", IntentKindGeneral},
		{"anxiety_general", "anxiety", IntentKindGeneral},
		{"stress_due_to_academic", "stress", IntentKindReason},
		{"heartbreak_due_to_cheating", "heartbreak", IntentKindReason},
		{"get_support_professional", "", IntentKindUniversal},
		{"greeting", "smalltalk", IntentKindOther},
	}
	for _, tc := range cases {
		meta, ok := c.Intents[tc.tag]
		if !ok {
			t.Errorf("expected %q to be indexed", tc.tag)
			continue
		}
		if meta.Topic != tc.topic || meta.Kind != tc.kind {
			t.Errorf("%s: got topic=%q kind=%s, want topic=%q kind=%s", tc.tag, meta.Topic, meta.Kind, tc.topic, tc.kind)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	c := NewResponseCatalog()
	c.Responses["empty"] = []string{}
	c.Responses["stress_general"] = []string{"Aku di sini, {user_name}."}
	c.Tips["stress_due_to_academic"] = []string{"tip"}
	c.Declines["stress_due_to_academic"] = []string{"decline"}

	if _, ok := c.Lookup("empty"); ok {
		t.Error("an empty pool must not count as a hit")
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("expected miss for unknown tag")
	}
	if pool, ok := c.Tip("stress_due_to_academic"); !ok || pool[0] != "tip" {
		t.Errorf("unexpected tip lookup result %v %v", pool, ok)
	}
	if pool, ok := c.Decline("stress_due_to_academic"); !ok || pool[0] != "decline" {
		t.Errorf("unexpected decline lookup result %v %v", pool, ok)
	}
	if !c.Known("empty") || c.Known("missing") {
		t.Error("unexpected Known result")
	}
	if meta := c.Meta("anxiety_due_to_exam"); meta.Topic != "anxiety" {
		t.Errorf("expected convention fallback topic, got %q", meta.Topic)
	}
}

func TestPersonalize(t *testing.T) {
	if got := Personalize("Hai {user_name}, {user_name}!", "Budi"); got != "Hai Budi, Budi!" {
		t.Errorf("unexpected personalization %q", got)
	}
	if got := Personalize("Semangat ya {user_name}", ""); got != "Semangat ya kamu" {
		t.Errorf("unexpected substitute %q", got)
	}
}

func TestPickRandom(t *testing.T) {
	pool := []string{"a", "b", "c"}
	if got := PickRandom(pool, func(n int) int { return n - 1 }); got != "c" {
		t.Errorf("expected last element, got %q", got)
	}
	if got := PickRandom(nil, nil); got != "" {
		t.Errorf("expected empty string for empty pool, got %q", got)
	}
	for i := 0; i < 20; i++ {
		got := PickRandom(pool, nil)
		if got != "a" && got != "b" && got != "c" {
			t.Fatalf("unexpected pick %q", got)
		}
	}
}

func TestResponseCatalog_Tags(t *testing.T) {
	c := NewResponseCatalog()
	c.Responses["sad_general"] = []string{"a"}
	c.Tips["stress_due_to_work"] = []string{"b"}
	c.IndexIntents([]string{"sad_general"}, []string{"greeting"}, nil)

	got := c.Tags()
	want := []string{"greeting", "sad_general", "stress_due_to_work"}
	if len(got) != len(want) {
		t.Fatalf("Tags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
