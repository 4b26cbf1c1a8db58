package agentflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/app/agentflow"
)

type counter struct {
	visited []string
}

func visit(name string) agentflow.Step[counter] {
	return agentflow.Step[counter]{
		Name: name,
		Run: func(_ context.Context, c *counter) (string, error) {
			c.visited = append(c.visited, name)
			return "visited " + name, nil
		},
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	flow := agentflow.New("test", visit("a"), visit("b"), visit("c"))

	var state counter
	thoughts, err := flow.Run(context.Background(), &state)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, state.visited)
	require.Len(t, thoughts, 3)
	for i, th := range thoughts {
		assert.Equal(t, i+1, th.Step)
	}
	assert.Equal(t, "b", thoughts[1].Action)
	assert.Equal(t, "visited b", thoughts[1].Thought)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := agentflow.Step[counter]{
		Name: "fail",
		Run: func(context.Context, *counter) (string, error) {
			return "", boom
		},
	}
	flow := agentflow.New("test", visit("a"), failing, visit("c"))

	var state counter
	thoughts, err := flow.Run(context.Background(), &state)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"a"}, state.visited)
	require.Len(t, thoughts, 2)
	assert.Equal(t, "error", thoughts[1].Action)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var state counter
	_, err := agentflow.New("test", visit("a")).Run(ctx, &state)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, state.visited)
}

func TestRunWithoutSteps(t *testing.T) {
	var state counter
	_, err := agentflow.New[counter]("empty").Run(context.Background(), &state)
	assert.Error(t, err)
}
