package chat

import (
	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter returns a GPT-4 encoding counter, or a 4-chars-per-token
// estimate when the codec cannot be loaded.
func NewTokenCounter() TokenCounter {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return approxCounter{}
	}
	return tiktokenCounter{codec: codec}
}

func (t tiktokenCounter) Count(text string) int {
	n, err := t.codec.Count(text)
	if err != nil {
		return approxCounter{}.Count(text)
	}
	return n
}

type approxCounter struct{}

func (approxCounter) Count(text string) int {
	return (len(text) + 3) / 4
}
