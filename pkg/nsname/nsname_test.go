package nsname

import "testing"

func TestDeriveCurrentMatchesFixture(t *testing.T) {
	got, err := Derive("/tmp", "tmp", LayoutCurrent)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := "tmp-51601b0"; got != want {
		t.Fatalf("Derive(/tmp, tmp) = %q, want %q", got, want)
	}
}

func TestDeriveIsStable(t *testing.T) {
	a, err := Derive("/srv/ciel/ws", "main", LayoutCurrent)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive("/srv/ciel/ws", "main", LayoutCurrent)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if a != b {
		t.Fatalf("Derive is not stable: %q != %q", a, b)
	}
}

func TestDeriveChangesWithPath(t *testing.T) {
	a, _ := Derive("/srv/ciel/ws", "main", LayoutCurrent)
	b, _ := Derive("/srv/ciel/wsx", "main", LayoutCurrent)
	if a == b {
		t.Fatalf("Derive did not change when path changed by one byte: %q", a)
	}
}

func TestDeriveUniqueWithinWorkspace(t *testing.T) {
	a, _ := Derive("/srv/ciel/ws", "alpha", LayoutCurrent)
	b, _ := Derive("/srv/ciel/ws", "beta", LayoutCurrent)
	if a == b {
		t.Fatalf("two distinct instance names derived the same namespace name: %q", a)
	}
}

func TestDeriveInvalidName(t *testing.T) {
	_, err := Derive("/srv/ciel/ws", string([]byte{0xff, 0xfe}), LayoutCurrent)
	if err != ErrInvalidName {
		t.Fatalf("Derive with invalid unicode = %v, want ErrInvalidName", err)
	}
}

func TestDeriveInvalidPath(t *testing.T) {
	_, err := Derive("/", "main", LayoutCurrent)
	if err != ErrInvalidPath {
		t.Fatalf("Derive with rootless path = %v, want ErrInvalidPath", err)
	}
}
