package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dokzlo13/espresso-hue/internal/db"
	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/ledger"
)

type mockAction struct {
	mock.Mock
	desc host.ActionDescriptor
}

func (m *mockAction) Descriptor() host.ActionDescriptor {
	return m.desc
}

func (m *mockAction) Run(ctx context.Context, rc host.RunContext) (bool, error) {
	args := m.Called(ctx, rc)
	return args.Bool(0), args.Error(1)
}

type staticOptions struct {
	slug    string
	options []host.Option
}

func (s staticOptions) Slug() string { return s.slug }

func (s staticOptions) Options(context.Context) []host.Option { return s.options }

func newAction(slug string) *mockAction {
	return &mockAction{desc: host.ActionDescriptor{
		Slug: slug,
		Settings: []host.Input{
			{Type: host.InputNumber, Key: "flashes", Default: 5},
			{Type: host.InputToggle, Key: "on", Default: true},
		},
	}}
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return ledger.New(database.DB)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(newAction("hue:set-light-state")))
	require.NoError(t, r.Register(newAction("hue:flash-lights")))
	assert.Error(t, r.Register(newAction("hue:flash-lights")), "duplicate slug")
	assert.Error(t, r.Register(newAction("")), "empty slug")

	_, ok := r.Get("hue:flash-lights")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "hue:flash-lights", descs[0].Slug)
	assert.Equal(t, "hue:set-light-state", descs[1].Slug)
}

func TestOptions(t *testing.T) {
	o := NewOptions()
	source := staticOptions{slug: "hue:lights-and-groups", options: []host.Option{{Text: "Desk", Value: "light:1", Category: "Lights"}}}

	require.NoError(t, o.Register(source))
	assert.Error(t, o.Register(source))

	got, ok := o.Get(context.Background(), "hue:lights-and-groups")
	require.True(t, ok)
	assert.Equal(t, source.options, got)

	_, ok = o.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestInvoker_AppliesDefaultsAndRecordsRun(t *testing.T) {
	action := newAction("hue:flash-lights")
	r := NewRegistry()
	require.NoError(t, r.Register(action))
	l := newLedger(t)

	action.On("Run", mock.Anything, mock.MatchedBy(func(rc host.RunContext) bool {
		return rc.Settings["flashes"] == 2 &&
			rc.Settings["on"] == true &&
			rc.TriggerData["path"] == "/hooks/door" &&
			rc.RunID != ""
	})).Return(true, nil).Once()

	inv := NewInvoker(r, l)
	result, err := inv.Invoke(context.Background(), Invocation{
		Slug:        "hue:flash-lights",
		Settings:    map[string]any{"flashes": 2},
		TriggerData: map[string]any{"path": "/hooks/door"},
		Source:      "webhook",
	})
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Error)
	action.AssertExpectations(t)

	entries, err := l.GetByRun(result.RunID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.EventActionStarted, entries[0].EventType)
	assert.Equal(t, ledger.EventActionCompleted, entries[1].EventType)
	assert.Equal(t, "webhook", entries[1].Source)
}

func TestInvoker_Failures(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		err     error
		wantErr string
	}{
		{"reported false", false, nil, ""},
		{"returned error", false, errors.New("bridge unreachable"), "bridge unreachable"},
		{"true with error", true, errors.New("partial"), "partial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := newAction("hue:set-light-state")
			r := NewRegistry()
			require.NoError(t, r.Register(action))
			l := newLedger(t)

			action.On("Run", mock.Anything, mock.Anything).Return(tt.ok, tt.err)

			result, err := NewInvoker(r, l).Invoke(context.Background(), Invocation{Slug: "hue:set-light-state"})
			require.NoError(t, err)
			assert.False(t, result.OK)
			assert.Equal(t, tt.wantErr, result.Error)

			entries, err := l.GetByRun(result.RunID)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, ledger.EventActionFailed, entries[1].EventType)
		})
	}
}

func TestInvoker_UnknownAction(t *testing.T) {
	inv := NewInvoker(NewRegistry(), nil)
	assert.False(t, inv.HasAction("nope"))

	_, err := inv.Invoke(context.Background(), Invocation{Slug: "nope"})
	assert.Error(t, err)
}
