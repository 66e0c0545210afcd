package impact

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

type hostCall struct {
	op    string
	h     Handle
	vec   mgl64.Vec3
	delay float64
}

type fakeHost struct {
	next    Handle
	failOn  string
	calls   []hostCall
	spawned int
}

func (f *fakeHost) Spawn(template *FragmentSpec, position mgl64.Vec3, rotation mgl64.Quat, mass float64) (Handle, error) {
	if template != nil && template.Name == f.failOn {
		return 0, errors.New("boom")
	}
	f.next++
	f.spawned++
	f.calls = append(f.calls, hostCall{op: "spawn", h: f.next, vec: position})
	return f.next, nil
}

func (f *fakeHost) ApplyImpulse(h Handle, impulse mgl64.Vec3) {
	f.calls = append(f.calls, hostCall{op: "impulse", h: h, vec: impulse})
}

func (f *fakeHost) ApplyTorque(h Handle, torque mgl64.Vec3) {
	f.calls = append(f.calls, hostCall{op: "torque", h: h, vec: torque})
}

func (f *fakeHost) DestroyAfter(h Handle, delay float64) {
	f.calls = append(f.calls, hostCall{op: "destroy_after", h: h, delay: delay})
}

func (f *fakeHost) DestroyNow(h Handle) {
	f.calls = append(f.calls, hostCall{op: "destroy_now", h: h})
}

func TestApplyOutcomeNoOp(t *testing.T) {
	host := &fakeHost{}
	require.Nil(t, ApplyOutcome(host, 99, FractureOutcome{}, nil))
	require.Empty(t, host.calls)
}

func TestApplyOutcomeDestroyOnly(t *testing.T) {
	host := &fakeHost{}
	got := ApplyOutcome(host, 99, FractureOutcome{Kind: OutcomeBreak, DestroyOnly: true}, nil)
	require.Nil(t, got)
	require.Equal(t, []hostCall{{op: "destroy_now", h: 99}}, host.calls)
}

func TestApplyOutcomeBreak(t *testing.T) {
	host := &fakeHost{next: 100}
	out := FractureOutcome{
		Kind: OutcomeBreak,
		Fragments: []FragmentCommand{
			{Template: &FragmentSpec{Name: "a"}, Impulse: mgl64.Vec3{1, 0, 0}, Torque: mgl64.Vec3{0, 0, 1}, DestroyAfter: 5},
			{Template: &FragmentSpec{Name: "bad"}, DestroyAfter: 5},
			{Template: &FragmentSpec{Name: "b"}, Impulse: mgl64.Vec3{0, 0, 1}, DestroyAfter: 5},
		},
	}
	host.failOn = "bad"

	got := ApplyOutcome(host, 7, out, nil)
	require.Equal(t, []Handle{101, 102}, got)
	require.Equal(t, 2, host.spawned)

	want := []hostCall{
		{op: "spawn", h: 101},
		{op: "impulse", h: 101, vec: mgl64.Vec3{1, 0, 0}},
		{op: "torque", h: 101, vec: mgl64.Vec3{0, 0, 1}},
		{op: "destroy_after", h: 101, delay: 5},
		{op: "spawn", h: 102},
		{op: "impulse", h: 102, vec: mgl64.Vec3{0, 0, 1}},
		{op: "torque", h: 102},
		{op: "destroy_after", h: 102, delay: 5},
		{op: "destroy_after", h: 7, delay: GlassRemovalDelay},
	}
	require.Equal(t, want, host.calls)
}

func TestApplyOutcomeNilHost(t *testing.T) {
	require.Nil(t, ApplyOutcome(nil, 1, FractureOutcome{Kind: OutcomeBreak, DestroyOnly: true}, nil))
}
