package nlp

import (
	"strings"
	"testing"
)

func TestParsePrediction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		tag     string
		conf    float64
		wantErr bool
	}{
		{name: "plain", raw: `{"tag":"stress_general","confidence":0.82}`, tag: "stress_general", conf: 0.82},
		{name: "fenced", raw: "```json\n{\"tag\": \"grief_general\", \"confidence\": 0.6}\n```", tag: "grief_general", conf: 0.6},
		{name: "prose around", raw: `Jawaban: {"tag":" greeting ","confidence":3}. Selesai.`, tag: "greeting", conf: 1},
		{name: "no object", raw: "entahlah", wantErr: true},
		{name: "broken", raw: `{"tag":}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrediction(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Tag != tt.tag || got.Confidence != tt.conf {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestIntentInstructionListsTags(t *testing.T) {
	prompt := IntentInstruction([]string{"stress_general", "anxiety_general"})
	if !strings.Contains(prompt, "- anxiety_general\n- stress_general\n") {
		t.Errorf("tags missing or unsorted:\n%s", prompt)
	}
}
