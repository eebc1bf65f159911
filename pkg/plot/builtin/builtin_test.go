package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

func TestInstall(t *testing.T) {
	reg := plot.NewRegistry()
	require.NoError(t, Install(reg))
	assert.Equal(t, []string{
		TypeAction, TypeDelay, TypeGroup, TypeIgnore,
		TypeLive, TypeLoop, TypeSequence, TypeSwitch,
	}, reg.Types())

	var dup *domain.DuplicateTypeError
	assert.ErrorAs(t, Install(reg), &dup)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    time.Duration
		wantErr bool
	}{
		{"duration", 2 * time.Second, 2 * time.Second, false},
		{"int millis", 100, 100 * time.Millisecond, false},
		{"float millis", 1.5, 1500 * time.Microsecond, false},
		{"numeric string", "250", 250 * time.Millisecond, false},
		{"duration string", "1m30s", 90 * time.Second, false},
		{"garbage", "soon", 0, true},
		{"negative", -5, 0, true},
		{"wrong type", []int{1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_Arity(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.New(TypeAction)
	assert.Error(t, err)
	_, err = reg.New(TypeAction, func() {}, func() {})
	assert.Error(t, err)
	def, err := reg.New(TypeAction, func() {})
	require.NoError(t, err)
	assert.NotNil(t, def.Lifecycle().Update)
}

func TestDescribe(t *testing.T) {
	sw := mustNew(t, TypeSwitch, "mood", map[string]any{
		"sad":   func() {},
		"*":     func() {},
		"happy": func() {},
		"$note": "kept as an option",
	})
	assert.Equal(t, []string{"*", "happy", "sad"}, Cases(sw))
	assert.Len(t, sw.Children(), 3)
	assert.Equal(t, "mood", Detail(sw))

	byFunc := mustNew(t, TypeSwitch, ChoiceFunc(func(*plot.Instance) any { return "x" }), map[string]any{"x": func() {}})
	assert.Equal(t, "func", Detail(byFunc))

	assert.Equal(t, "1.5s", Detail(mustNew(t, TypeDelay, 1500)))
	assert.Equal(t, "every 100ms", Detail(mustNew(t, TypeLive, 100)))
	assert.Empty(t, Detail(mustNew(t, TypeSequence)))
	assert.Nil(t, Cases(mustNew(t, TypeGroup)))
}
