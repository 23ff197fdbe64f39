// Package verify decides whether a captured photo proves the alarm's task
// was performed.
package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

// DefaultThreshold is the minimum classifier confidence for a label to count.
const DefaultThreshold = 0.5

// Label is one classification result.
type Label struct {
	Name       string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier produces labels for an image.
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Label, error)
}

// Verifier matches classifier output against a task's acceptable label set.
type Verifier struct {
	classifier Classifier
	threshold  float64
	log        *zap.Logger
}

// New builds a Verifier with the default confidence threshold.
func New(classifier Classifier, log *zap.Logger) *Verifier {
	return &Verifier{classifier: classifier, threshold: DefaultThreshold, log: log}
}

// Verify reports whether the image satisfies the task. A detected label
// counts when its confidence clears the threshold and it overlaps any
// acceptable label by case-insensitive substring in either direction.
// Classifier errors are returned; callers treat them as a failed attempt.
func (v *Verifier) Verify(ctx context.Context, task alarm.Task, image []byte) (bool, error) {
	labels, err := v.classifier.Classify(ctx, image)
	if err != nil {
		return false, err
	}

	accepted := task.VerificationLabels()
	for _, l := range labels {
		if l.Confidence <= v.threshold {
			continue
		}
		detected := strings.ToLower(l.Name)
		for _, want := range accepted {
			want = strings.ToLower(want)
			if strings.Contains(detected, want) || strings.Contains(want, detected) {
				v.log.Info("verification matched",
					zap.String("task", string(task)),
					zap.String("label", l.Name),
					zap.Float64("confidence", l.Confidence),
				)
				return true, nil
			}
		}
	}

	v.log.Info("verification failed",
		zap.String("task", string(task)),
		zap.Int("labels", len(labels)),
	)
	return false, nil
}
