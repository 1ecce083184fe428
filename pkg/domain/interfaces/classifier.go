package interfaces

import "context"

// Classifier assigns a category label to free text
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
