package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stuckGenerator ignores ctx and blocks until released.
type stuckGenerator struct {
	release chan struct{}
}

func (g *stuckGenerator) Generate(context.Context, string) (string, error) {
	<-g.release
	return "late", nil
}

func TestNewGenerationClient_Validates(t *testing.T) {
	_, err := NewGenerationClient(nil, time.Second, nil)
	require.Error(t, err)

	_, err = NewGenerationClient(&fakeGenerator{}, 0, nil)
	require.Error(t, err)
}

func TestGenerationClient_Generate(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		want string
	}{
		{name: "completion", gen: &fakeGenerator{text: "answer"}, want: "answer"},
		{name: "backend error", gen: &fakeGenerator{err: errors.New("throttled")}, want: ApologyResponse},
		{name: "empty completion", gen: &fakeGenerator{text: "  \n"}, want: ApologyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerationClient(tt.gen, time.Second, discardLogger())
			require.NoError(t, err)

			require.Equal(t, tt.want, g.Generate(context.Background(), "prompt"))
			require.Equal(t, []string{"prompt"}, tt.gen.prompts)
		})
	}
}

func TestGenerationClient_TimeoutReturnsApology(t *testing.T) {
	stuck := &stuckGenerator{release: make(chan struct{})}
	t.Cleanup(func() { close(stuck.release) })

	g, err := NewGenerationClient(stuck, 20*time.Millisecond, discardLogger())
	require.NoError(t, err)

	start := time.Now()
	got := g.Generate(context.Background(), "prompt")

	require.Equal(t, ApologyResponse, got)
	require.Less(t, time.Since(start), 2*time.Second)
}
