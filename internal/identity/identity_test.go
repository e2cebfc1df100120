package identity

import "testing"

func TestNewKey_DistinguishesSameName(t *testing.T) {
	registry := NewRegistry()

	first := registry.NewKey("alex")
	second := registry.NewKey("alex")

	if first == second {
		t.Errorf("expected distinct keys for the same name, got %s twice", first)
	}
	if first.Name != "alex" || second.Name != "alex" {
		t.Errorf("expected both keys to keep the name, got %q and %q", first.Name, second.Name)
	}
	if second.Seq != first.Seq+1 {
		t.Errorf("expected consecutive sequence numbers, got %d then %d", first.Seq, second.Seq)
	}
}

func TestNewKey_IndependentCountersPerName(t *testing.T) {
	registry := NewRegistry()

	registry.NewKey("alex")
	other := registry.NewKey("sam")

	if other.Seq != 0 {
		t.Errorf("expected fresh name to start at 0, got %d", other.Seq)
	}
}

func TestRestore_AdvancesCounterPastRestoredKey(t *testing.T) {
	registry := NewRegistry()
	registry.Restore(Key{Name: "alex", Seq: 4})

	next := registry.NewKey("alex")
	if next.Seq != 5 {
		t.Errorf("expected next sequence 5 after restoring 4, got %d", next.Seq)
	}
}

func TestRestore_IgnoresOlderKeys(t *testing.T) {
	registry := NewRegistry()
	registry.Restore(Key{Name: "alex", Seq: 7})
	registry.Restore(Key{Name: "alex", Seq: 2})

	next := registry.NewKey("alex")
	if next.Seq != 8 {
		t.Errorf("expected next sequence 8, got %d", next.Seq)
	}
}

func TestKey_String(t *testing.T) {
	key := Key{Name: "dishes", Seq: 3}
	if got := key.String(); got != "dishes#3" {
		t.Errorf("expected dishes#3, got %q", got)
	}
}
