package transport

import "testing"

func TestActionString(t *testing.T) {
	cases := map[Action]string{
		ActionResume: "resume",
		ActionFail:   "fail",
		ActionSettle: "settle",
		Action(99):   "unknown",
	}
	for action, want := range cases {
		if got := action.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", action, got, want)
		}
	}
}

func TestTemporaryChannelFailureIsOverridable(t *testing.T) {
	orig := TemporaryChannelFailure
	defer func() { TemporaryChannelFailure = orig }()

	TemporaryChannelFailure = 0x2000
	if TemporaryChannelFailure != 0x2000 {
		t.Fatal("TemporaryChannelFailure did not accept override")
	}
}
