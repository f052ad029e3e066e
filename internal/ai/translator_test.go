package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fscarponi/characterai/internal/domain"
)

type fakeCompleter struct {
	reply string
	err   error
	calls [][]domain.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []domain.Message) (string, error) {
	f.calls = append(f.calls, messages)
	return f.reply, f.err
}

func TestTranslatorBuildsRequest(t *testing.T) {
	fake := &fakeCompleter{reply: "Sei Eldric"}
	tr := NewTranslator(fake)

	out, err := tr.Translate(context.Background(), "You are Eldric", "italian")
	require.NoError(t, err)
	assert.Equal(t, "Sei Eldric", out)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []domain.Message{{
		Role:    domain.RoleUser,
		Content: "Translate in italian the following text: You are Eldric",
	}}, fake.calls[0])
}

func TestTranslatorFailures(t *testing.T) {
	_, err := NewTranslator(&fakeCompleter{err: errors.New("down")}).Translate(context.Background(), "x", "french")
	assert.ErrorIs(t, err, ErrTranslationUnavailable)

	_, err = NewTranslator(&fakeCompleter{reply: "  "}).Translate(context.Background(), "x", "french")
	assert.ErrorIs(t, err, ErrTranslationUnavailable)
}
