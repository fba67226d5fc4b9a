package httpcore

import (
	"github.com/cespare/xxhash/v2"
)

// MaxHeaders is the largest number of header fields HeaderMap accepts from
// a single message. It mirrors HttpState::MAX_HEADERS from the reference
// implementation this codec was distilled from.
const MaxHeaders = 64

// maxHeaderMapSize is the largest capacity HeaderMap will grow to. Capacity
// is always a power of two, so this is also the largest valid mask+1.
const maxHeaderMapSize = 1 << 31

// headerField is one name/value pair stored in a HeaderMap slot, plus the
// low 16 bits of its name hash cached for fast probe-chain comparisons
// without re-hashing or re-comparing the full name on every step.
type headerField struct {
	name  []byte
	value []byte
	hash  uint16
	used  bool
}

// HeaderMap is an open-addressed, linear-probing, duplicate-preserving
// multimap of HTTP header fields. Capacity is always a power of two so the
// table index can be computed with a mask instead of a modulo.
//
// Unlike fasthttp's own argsKV slice (an unordered append-only list
// intended for small N with linear scan), HeaderMap is built for O(1)
// average-case lookup at larger header counts. It holds the headers of
// HTTP/1.1 requests and of HTTP/2 requests, into which the h2 package
// copies the hpack decoder's emitted field list.
type HeaderMap struct {
	slots []headerField
	mask  int
	count int
}

// NewHeaderMap returns an empty HeaderMap pre-sized for capacity fields.
func NewHeaderMap(capacity int) *HeaderMap {
	m := &HeaderMap{}
	if capacity > 0 {
		m.reserve(capacity)
	}
	return m
}

func hashName(name []byte) uint16 {
	return uint16(xxhash.Sum64(name))
}

// nextPow2 rounds n up to the next power of two, capped at maxHeaderMapSize.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	if n >= maxHeaderMapSize {
		return maxHeaderMapSize
	}
	return roundUpForSliceCap(n)
}

func (m *HeaderMap) reserve(capacity int) {
	newCap := nextPow2(capacity * 2)
	if newCap <= len(m.slots) {
		return
	}
	old := m.slots
	m.slots = make([]headerField, newCap)
	m.mask = newCap - 1
	m.count = 0
	for i := range old {
		if old[i].used {
			m.insertSlot(old[i].name, old[i].value, old[i].hash)
		}
	}
}

func (m *HeaderMap) ensureCapacity() {
	if len(m.slots) == 0 {
		m.reserve(8)
		return
	}
	// Keep the load factor under 0.75 the way a linear-probing table must
	// to avoid pathological probe chains.
	if (m.count+1)*4 >= len(m.slots)*3 {
		m.reserve(len(m.slots))
	}
}

func (m *HeaderMap) insertSlot(name, value []byte, hash uint16) {
	idx := int(hash) & m.mask
	for {
		s := &m.slots[idx]
		if !s.used {
			s.name = name
			s.value = value
			s.hash = hash
			s.used = true
			m.count++
			return
		}
		idx = (idx + 1) & m.mask
	}
}

// TryAppend appends a header field without overwriting any existing field
// of the same name, returning an error instead of panicking when MaxHeaders
// would be exceeded. Grounded in the TryReserveError/TryReserve shape from
// the headers/error.rs original — Go has no fallible-allocation signal, so
// the field-count cap stands in for the original's capacity cap.
func (m *HeaderMap) TryAppend(name, value []byte) error {
	if m.count >= MaxHeaders {
		return ErrTooManyHeaders
	}
	m.ensureCapacity()
	m.insertSlot(append([]byte(nil), name...), append([]byte(nil), value...), hashName(name))
	return nil
}

// Append is the panicking convenience wrapper over TryAppend, matching the
// split the teacher's own Args/ResponseHeader types make between a fast
// assume-it-fits path and an explicit error-returning one.
func (m *HeaderMap) Append(name, value []byte) {
	if err := m.TryAppend(name, value); err != nil {
		panic(err)
	}
}

// Insert replaces all existing fields named name with a single field
// holding value.
func (m *HeaderMap) Insert(name, value []byte) {
	m.Remove(name)
	m.Append(name, value)
}

// Get returns the first field's value for the given name, or nil if absent.
func (m *HeaderMap) Get(name []byte) []byte {
	if len(m.slots) == 0 {
		return nil
	}
	hash := hashName(name)
	idx := int(hash) & m.mask
	for {
		s := &m.slots[idx]
		if !s.used {
			return nil
		}
		if s.hash == hash && headerNameEqual(s.name, name) {
			return s.value
		}
		idx = (idx + 1) & m.mask
	}
}

// GetAll returns every field's value for the given name, preserving
// insertion order is not guaranteed across probe-chain backshift deletes;
// duplicate HTTP header fields are rare enough that callers needing strict
// order should track it themselves at a higher layer.
func (m *HeaderMap) GetAll(name []byte) [][]byte {
	if len(m.slots) == 0 {
		return nil
	}
	hash := hashName(name)
	idx := int(hash) & m.mask
	var out [][]byte
	probed := 0
	for probed < len(m.slots) {
		s := &m.slots[idx]
		if !s.used {
			break
		}
		if s.hash == hash && headerNameEqual(s.name, name) {
			out = append(out, s.value)
		}
		idx = (idx + 1) & m.mask
		probed++
	}
	return out
}

// Remove deletes every field with the given name, backshifting later
// entries in the probe chain so lookups for other names remain correct.
// Grounded in headers/map.rs's remove, which must preserve every other
// key's probe sequence when compacting a cluster.
func (m *HeaderMap) Remove(name []byte) {
	if len(m.slots) == 0 {
		return
	}
	hash := hashName(name)
	idx := int(hash) & m.mask
	for {
		s := &m.slots[idx]
		if !s.used {
			return
		}
		if s.hash == hash && headerNameEqual(s.name, name) {
			m.removeAt(idx)
			// removeAt may have shifted a replacement into idx; re-check it
			// before advancing so nothing in the cluster is skipped.
			continue
		}
		idx = (idx + 1) & m.mask
	}
}

func (m *HeaderMap) removeAt(idx int) {
	m.slots[idx] = headerField{}
	m.count--

	next := (idx + 1) & m.mask
	for m.slots[next].used {
		idealIdx := int(m.slots[next].hash) & m.mask
		// Only backshift if the gap at idx lies on the path from the
		// entry's ideal slot to its current slot; otherwise shifting it
		// would break its own probe chain.
		if probeDistance(idealIdx, idx, m.mask) <= probeDistance(idealIdx, next, m.mask) {
			m.slots[idx] = m.slots[next]
			m.slots[next] = headerField{}
			idx = next
		}
		next = (next + 1) & m.mask
	}
}

func probeDistance(ideal, actual, mask int) int {
	return (actual - ideal) & mask
}

func headerNameEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if toLowerTable[a[i]] != toLowerTable[b[i]] {
			return false
		}
	}
	return true
}

// Len returns the number of fields currently stored.
func (m *HeaderMap) Len() int {
	return m.count
}

// Clear empties the map without releasing its backing storage, so the same
// HeaderMap can be reused across requests the way the driver reclaims its
// read buffer between pipelined requests.
func (m *HeaderMap) Clear() {
	for i := range m.slots {
		m.slots[i] = headerField{}
	}
	m.count = 0
}

// Each calls fn once per stored field in table order (not insertion order).
func (m *HeaderMap) Each(fn func(name, value []byte)) {
	for i := range m.slots {
		if m.slots[i].used {
			fn(m.slots[i].name, m.slots[i].value)
		}
	}
}
