package suggest

import "context"

// Index exposes the completion, correction and hot-word operations of the
// search engine.
type Index interface {
	SuggestPrefix(ctx context.Context, text string) ([]string, error)
	Correct(ctx context.Context, text, target string) ([]string, error)
	HotWords(ctx context.Context) ([]string, error)
}
