package intern

// MaxTextLen is the stored text width. Longer strings are truncated before
// hashing so repeated lookups of the same long string stay idempotent.
const MaxTextLen = 31

// DefaultCapacity is the table size used when the configuration does not
// override it.
const DefaultCapacity = 64

type entry struct {
	hash uint32
	id   uint64
	text string
	used bool
}

// Table is a fixed-capacity string interning table. Ids are 1-based and
// strictly increasing in allocation order; they are never reused while the
// table is live. Not safe for concurrent use.
type Table struct {
	entries []entry
	nextID  uint64
}

// New creates a Table with the given fixed capacity.
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{
		entries: make([]entry, capacity),
		nextID:  1,
	}
}

// hashString is the DJB2 string hash.
func hashString(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// Intern returns the id for text, allocating one on first sight. It returns
// 0 when text is empty or the table is full; callers must treat 0 as "no
// interned id available", never as a valid id.
func (t *Table) Intern(text string) uint64 {
	if text == "" {
		return 0
	}
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}

	hash := hashString(text)

	for i := range t.entries {
		e := &t.entries[i]
		if e.used && e.hash == hash && e.text == text {
			return e.id
		}
	}

	for i := range t.entries {
		e := &t.entries[i]
		if !e.used {
			e.used = true
			e.hash = hash
			e.id = t.nextID
			e.text = text
			t.nextID++
			return e.id
		}
	}

	// Table full.
	return 0
}

// TextFor returns the stored text for an id. The false return covers id 0
// and ids the table has never allocated.
func (t *Table) TextFor(id uint64) (string, bool) {
	if id == 0 {
		return "", false
	}
	for i := range t.entries {
		e := &t.entries[i]
		if e.used && e.id == id {
			return e.text, true
		}
	}
	return "", false
}

// Reset clears all entries and restarts id allocation at 1.
func (t *Table) Reset() {
	for i := range t.entries {
		t.entries[i] = entry{}
	}
	t.nextID = 1
}
