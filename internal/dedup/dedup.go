// Package dedup tracks which leads have already been accepted during a run.
package dedup

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

var fold = cases.Fold()

// Key computes the duplicate-detection key for a lead: the case-folded,
// whitespace-collapsed business name paired with the phone digits. When the
// phone is absent the key degrades to name plus email, then name alone.
// A lead with none of the three has no stable key and reports ok=false.
func Key(l model.Lead) (string, bool) {
	name := fold.String(normalize.CollapseSpace(l.Business))
	switch {
	case name == "" && l.Number == "" && l.Email == "":
		return "", false
	case l.Number != "":
		return name + "\x00" + keyPhone(l.Number), true
	case l.Email != "":
		return name + "\x00" + strings.ToLower(l.Email), true
	default:
		return name, true
	}
}

// keyPhone drops a leading country "1" so the same number keys identically
// whether it came from a tel: href or bare formatted text.
func keyPhone(digits string) string {
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// Set is the run-wide record of seen dedup keys. The check-and-insert in
// Accept is atomic under the mutex so concurrent per-URL workers cannot both
// claim the same key.
type Set struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSet creates an empty key set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Accept reports whether the lead is new, recording its key when it is.
// Duplicates and keyless leads are rejected; rejection is routine, not an
// error.
func (s *Set) Accept(l model.Lead) bool {
	key, ok := Key(l)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of accepted keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
