package conversation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/app/conversation"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

type scriptedOracle struct {
	extracted  domain.TripIntent
	extractErr error
	question   string
	questionFn func(domain.Field) (string, error)
	asked      []domain.Field
	block      bool
}

func (o *scriptedOracle) ExtractIntent(ctx context.Context, _ string, _ domain.TripIntent) (domain.TripIntent, error) {
	if o.block {
		<-ctx.Done()
		return domain.TripIntent{}, &domain.OracleError{Op: "extract_intent", Err: ctx.Err()}
	}
	return o.extracted, o.extractErr
}

func (o *scriptedOracle) NextQuestion(_ context.Context, _ domain.TripIntent, f domain.Field) (string, error) {
	o.asked = append(o.asked, f)
	if o.questionFn != nil {
		return o.questionFn(f)
	}
	return o.question, nil
}

func (o *scriptedOracle) Summarize(context.Context, *domain.Plan) (string, error) {
	return "", nil
}

func TestAdvanceAsksBudgetBeforeDays(t *testing.T) {
	oracle := &scriptedOracle{extracted: domain.TripIntent{Destination: "Goa"}, question: "What's your budget for Goa?"}
	m := conversation.NewMachine(oracle, time.Second)

	res, err := m.Advance(context.Background(), "I want to go to Goa", nil, domain.TripIntent{})
	require.NoError(t, err)

	assert.False(t, res.Ready)
	assert.Equal(t, domain.StateCollecting, res.State)
	assert.Equal(t, []domain.Field{domain.FieldBudget}, oracle.asked)
	assert.Equal(t, []domain.Field{domain.FieldBudget, domain.FieldDays, domain.FieldInterests}, res.Missing)
	assert.Equal(t, "What's your budget for Goa?", res.Response)
}

func TestAdvanceReadyWithoutInterests(t *testing.T) {
	oracle := &scriptedOracle{extracted: domain.TripIntent{Budget: domain.Rupees(50000), Days: 3}}
	m := conversation.NewMachine(oracle, time.Second)

	res, err := m.Advance(context.Background(), "50k for 3 days", nil, domain.TripIntent{Destination: "Goa"})
	require.NoError(t, err)

	assert.True(t, res.Ready)
	assert.Equal(t, domain.StateReady, res.State)
	assert.Equal(t, conversation.ReadyMessage, res.Response)
	assert.Equal(t, []domain.Field{domain.FieldInterests}, res.Missing)
	assert.Empty(t, oracle.asked)
}

func TestAdvanceAppendsBothTurnsWithoutTouchingInput(t *testing.T) {
	oracle := &scriptedOracle{question: "Where to?"}
	m := conversation.NewMachine(oracle, time.Second)

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}
	res, err := m.Advance(context.Background(), "  planning a trip  ", history, domain.TripIntent{})
	require.NoError(t, err)

	require.Len(t, res.History, 4)
	assert.Len(t, history, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "planning a trip"}, domain.Turn{Role: res.History[2].Role, Content: res.History[2].Content})
	assert.Equal(t, domain.RoleAssistant, res.History[3].Role)
	assert.Equal(t, "Where to?", res.History[3].Content)
}

func TestAdvanceKeepsIntentWhenExtractionFails(t *testing.T) {
	oracle := &scriptedOracle{
		extractErr: &domain.OracleError{Op: "extract_intent", Err: errors.New("unparsable")},
		question:   "How many days?",
	}
	m := conversation.NewMachine(oracle, time.Second)

	prior := domain.TripIntent{Destination: "Goa", Budget: domain.Rupees(40000)}
	res, err := m.Advance(context.Background(), "hmm", nil, prior)
	require.NoError(t, err)

	assert.Equal(t, prior, res.Intent)
	assert.Equal(t, []domain.Field{domain.FieldDays}, oracle.asked)
}

func TestAdvanceFallsBackToFixedQuestion(t *testing.T) {
	for _, fn := range []func(domain.Field) (string, error){
		func(domain.Field) (string, error) {
			return "", &domain.OracleError{Op: "next_question", Err: errors.New("quota")}
		},
		func(domain.Field) (string, error) { return "   ", nil },
	} {
		m := conversation.NewMachine(&scriptedOracle{questionFn: fn}, time.Second)

		res, err := m.Advance(context.Background(), "hello", nil, domain.TripIntent{})
		require.NoError(t, err)
		assert.Equal(t, conversation.FallbackQuestion(domain.FieldDestination), res.Response)
	}
}

func TestAdvanceOracleTimeoutDegrades(t *testing.T) {
	oracle := &scriptedOracle{block: true, question: "Where to?"}
	m := conversation.NewMachine(oracle, 10*time.Millisecond)

	res, err := m.Advance(context.Background(), "hello", nil, domain.TripIntent{})
	require.NoError(t, err)
	assert.Equal(t, "Where to?", res.Response)
}

func TestAdvanceMergesMonotonically(t *testing.T) {
	oracle := &scriptedOracle{extracted: domain.TripIntent{Interests: []string{"Food"}}, question: "?"}
	m := conversation.NewMachine(oracle, time.Second)

	prior := domain.TripIntent{Destination: "Goa", Interests: []string{"relaxation"}}
	res, err := m.Advance(context.Background(), "I love food", nil, prior)
	require.NoError(t, err)

	assert.Equal(t, "Goa", res.Intent.Destination)
	assert.Equal(t, []string{"relaxation", "food"}, res.Intent.Interests)
}

func TestAdvanceRejectsEmptyMessage(t *testing.T) {
	m := conversation.NewMachine(&scriptedOracle{}, time.Second)
	_, err := m.Advance(context.Background(), " \n", nil, domain.TripIntent{})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
}
