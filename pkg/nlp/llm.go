package nlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// IntentInstruction is the system prompt for LLM-backed classifiers. The
// model must answer with a single JSON object.
func IntentInstruction(tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("Kamu adalah pengklasifikasi intent untuk chatbot dukungan kesehatan mental berbahasa Indonesia.\n")
	b.WriteString("Pilih SATU tag yang paling cocok dengan pesan pengguna dari daftar berikut:\n")
	for _, tag := range sorted {
		b.WriteString("- ")
		b.WriteString(tag)
		b.WriteString("\n")
	}
	b.WriteString("Jawab hanya dengan JSON: {\"tag\": \"<tag>\", \"confidence\": <angka 0 sampai 1>}.\n")
	b.WriteString("Jika tidak ada yang cocok, gunakan tag kosong dan confidence 0.")
	return b.String()
}

// ParsePrediction reads the JSON object an LLM returned, tolerating code
// fences and surrounding prose.
func ParsePrediction(raw string) (*Classification, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, errors.New("no JSON object in model output")
	}

	var out Classification
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("invalid prediction JSON: %w", err)
	}

	out.Tag = strings.TrimSpace(out.Tag)
	out.Confidence = ClampConfidence(out.Confidence)
	return &out, nil
}
