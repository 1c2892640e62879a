package instance

import "testing"

func TestBootStateString(t *testing.T) {
	cases := map[BootState]string{
		BootTrue:    "booted",
		BootFalse:   "not-booted",
		BootUnknown: "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", state, got, want)
		}
	}
}

