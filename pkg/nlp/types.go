package nlp

import (
	"context"
	"math"
)

// Classification is the top prediction of an intent classifier.
type Classification struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// IClassifier maps a normalized utterance to an intent tag. Implementations
// must honour ctx cancellation; the caller bounds every call with a timeout.
type IClassifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// ClassifierFunc adapts a plain function to IClassifier.
type ClassifierFunc func(ctx context.Context, text string) (*Classification, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (*Classification, error) {
	return f(ctx, text)
}

// ClampConfidence keeps a reported confidence inside [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
