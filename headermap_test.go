package httpcore

import "testing"

func TestHeaderMapGetAfterAppend(t *testing.T) {
	m := NewHeaderMap(4)
	m.Append([]byte("Content-Type"), []byte("text/plain"))
	m.Append([]byte("X-Request-Id"), []byte("abc123"))

	if got := string(m.Get([]byte("content-type"))); got != "text/plain" {
		t.Fatalf("Get(content-type) = %q, want text/plain", got)
	}
	if got := string(m.Get([]byte("X-Request-ID"))); got != "abc123" {
		t.Fatalf("Get(X-Request-ID) = %q, want abc123", got)
	}
	if m.Get([]byte("Missing")) != nil {
		t.Fatalf("Get(Missing) = non-nil, want nil")
	}
}

func TestHeaderMapDuplicatesPreserved(t *testing.T) {
	m := NewHeaderMap(4)
	m.Append([]byte("Set-Cookie"), []byte("a=1"))
	m.Append([]byte("Set-Cookie"), []byte("b=2"))

	all := m.GetAll([]byte("set-cookie"))
	if len(all) != 2 {
		t.Fatalf("GetAll returned %d values, want 2", len(all))
	}
	seen := map[string]bool{}
	for _, v := range all {
		seen[string(v)] = true
	}
	if !seen["a=1"] || !seen["b=2"] {
		t.Fatalf("GetAll = %v, missing expected values", all)
	}
}

func TestHeaderMapInsertReplaces(t *testing.T) {
	m := NewHeaderMap(4)
	m.Append([]byte("Host"), []byte("old.example"))
	m.Insert([]byte("Host"), []byte("new.example"))

	all := m.GetAll([]byte("Host"))
	if len(all) != 1 || string(all[0]) != "new.example" {
		t.Fatalf("GetAll after Insert = %v, want [new.example]", all)
	}
}

func TestHeaderMapRemoveCompactsProbeChain(t *testing.T) {
	m := NewHeaderMap(2)
	names := []string{"A", "B", "C", "D", "E"}
	for _, n := range names {
		m.Append([]byte(n), []byte(n+"-value"))
	}
	m.Remove([]byte("C"))

	if m.Len() != len(names)-1 {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(names)-1)
	}
	for _, n := range names {
		if n == "C" {
			if m.Get([]byte(n)) != nil {
				t.Fatalf("Get(%s) after Remove = non-nil, want nil", n)
			}
			continue
		}
		if got := string(m.Get([]byte(n))); got != n+"-value" {
			t.Fatalf("Get(%s) = %q, want %s-value", n, got, n)
		}
	}
}

func TestHeaderMapTooManyHeaders(t *testing.T) {
	m := NewHeaderMap(MaxHeaders)
	for i := 0; i < MaxHeaders; i++ {
		if err := m.TryAppend([]byte{byte('a' + i%26), byte(i)}, []byte("v")); err != nil {
			t.Fatalf("TryAppend #%d: unexpected error %v", i, err)
		}
	}
	if err := m.TryAppend([]byte("overflow"), []byte("v")); err != ErrTooManyHeaders {
		t.Fatalf("TryAppend past MaxHeaders = %v, want ErrTooManyHeaders", err)
	}
}

func TestHeaderMapClearAndEach(t *testing.T) {
	m := NewHeaderMap(4)
	m.Append([]byte("A"), []byte("1"))
	m.Append([]byte("B"), []byte("2"))

	count := 0
	m.Each(func(name, value []byte) { count++ })
	if count != 2 {
		t.Fatalf("Each visited %d fields, want 2", count)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", m.Len())
	}
	m.Each(func(name, value []byte) {
		t.Fatalf("Each after Clear visited %s, want none", name)
	})
}
