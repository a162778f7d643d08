package intern

import (
	"fmt"
	"strings"
	"testing"
)

func TestTable_InternIdempotent(t *testing.T) {
	table := New(8)

	first := table.Intern("Running")
	second := table.Intern("Running")

	if first == 0 {
		t.Fatal("Intern returned 0 for a valid string")
	}
	if first != second {
		t.Fatalf("Intern not idempotent: %d then %d", first, second)
	}
}

func TestTable_DistinctStringsDistinctIDs(t *testing.T) {
	table := New(8)

	a := table.Intern("sem_take")
	b := table.Intern("sem_give")

	if a == 0 || b == 0 {
		t.Fatalf("unexpected interning failure: %d, %d", a, b)
	}
	if a == b {
		t.Fatalf("distinct strings share id %d", a)
	}
}

func TestTable_IDsStartAtOneAndIncrease(t *testing.T) {
	table := New(8)

	for i := 1; i <= 4; i++ {
		id := table.Intern(fmt.Sprintf("event-%d", i))
		if id != uint64(i) {
			t.Errorf("Intern #%d = %d, want %d", i, id, i)
		}
	}
}

func TestTable_EmptyString(t *testing.T) {
	table := New(8)
	if id := table.Intern(""); id != 0 {
		t.Errorf("Intern(\"\") = %d, want 0", id)
	}
}

func TestTable_Full(t *testing.T) {
	table := New(2)

	if id := table.Intern("a"); id == 0 {
		t.Fatal("first Intern failed")
	}
	if id := table.Intern("b"); id == 0 {
		t.Fatal("second Intern failed")
	}
	if id := table.Intern("c"); id != 0 {
		t.Errorf("Intern on full table = %d, want 0", id)
	}

	// Existing entries still resolve after the table fills up.
	if id := table.Intern("a"); id != 1 {
		t.Errorf("Intern(\"a\") on full table = %d, want 1", id)
	}
}

func TestTable_Truncation(t *testing.T) {
	table := New(8)

	long := strings.Repeat("x", 100)
	id := table.Intern(long)
	if id == 0 {
		t.Fatal("Intern of long string failed")
	}

	// The same long string resolves to the same id.
	if again := table.Intern(long); again != id {
		t.Errorf("long string not idempotent: %d then %d", id, again)
	}

	text, ok := table.TextFor(id)
	if !ok {
		t.Fatal("TextFor failed for a live id")
	}
	if len(text) != MaxTextLen {
		t.Errorf("stored text length = %d, want %d", len(text), MaxTextLen)
	}
}

func TestTable_TextFor(t *testing.T) {
	table := New(8)
	id := table.Intern("mutex_lock")

	text, ok := table.TextFor(id)
	if !ok || text != "mutex_lock" {
		t.Errorf("TextFor(%d) = %q, %v; want \"mutex_lock\", true", id, text, ok)
	}

	if _, ok := table.TextFor(0); ok {
		t.Error("TextFor(0) must report not found")
	}
	if _, ok := table.TextFor(999); ok {
		t.Error("TextFor of unallocated id must report not found")
	}
}

func TestTable_Reset(t *testing.T) {
	table := New(8)
	table.Intern("one")
	table.Intern("two")

	table.Reset()

	if _, ok := table.TextFor(1); ok {
		t.Error("TextFor found an entry after Reset")
	}
	if id := table.Intern("fresh"); id != 1 {
		t.Errorf("first Intern after Reset = %d, want 1", id)
	}
}
