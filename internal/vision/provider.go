// Package vision wraps the hosted vision-language model providers behind a
// single capability interface. Retry policy lives in the orchestrator, not
// here: a failed call is classified and returned, never retried.
package vision

import "context"

// Provider sends an image plus a natural-language instruction to a hosted
// vision-language model and returns the model's raw textual reply.
type Provider interface {
	Name() string
	DescribeOutfit(ctx context.Context, imageDataURL, prompt string) (string, error)
}
