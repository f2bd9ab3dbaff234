package statement

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// ClassifiedEntry is a ledger entry resolved to a leaf of the structure.
type ClassifiedEntry struct {
	NodeID string
	Entry  models.LedgerEntry
}

// Classification is the classifier output: the entries that feed the
// statement plus the diagnostics for the ones that were dropped.
type Classification struct {
	Entries     []ClassifiedEntry
	Diagnostics models.Diagnostics
}

// Classifier resolves ledger classifications to structure leaves in two
// stages: classification -> canonical account -> structure node.
// Matching is exact and case-sensitive; when normalize is set a single
// retry with Normalize applied to both sides is made before giving up.
type Classifier struct {
	structure *Structure
	normalize bool
	exact     map[string]string
	folded    map[string]string
}

// NewClassifier indexes the mappings. On duplicate classifications the first
// mapping wins.
func NewClassifier(s *Structure, mappings []models.AccountMapping, normalize bool) *Classifier {
	c := &Classifier{
		structure: s,
		normalize: normalize,
		exact:     make(map[string]string, len(mappings)),
		folded:    make(map[string]string, len(mappings)),
	}
	for _, m := range mappings {
		if _, ok := c.exact[m.Classification]; !ok {
			c.exact[m.Classification] = m.Account
		}
		key := Normalize(m.Classification)
		if _, ok := c.folded[key]; !ok {
			c.folded[key] = m.Account
		}
	}
	return c
}

// Resolve maps one classification to a leaf node id. When it fails, the
// reason says which stage did.
func (c *Classifier) Resolve(classification string) (string, models.UnmappedReason, bool) {
	account, ok := c.exact[classification]
	if !ok && c.normalize {
		account, ok = c.folded[Normalize(classification)]
	}
	if !ok {
		return "", models.ReasonNoMapping, false
	}

	id, ok := c.structure.lookupAccount(account, c.normalize)
	if !ok {
		return "", models.ReasonNoStructureNode, false
	}
	switch c.structure.kinds[id] {
	case kindTotalizer:
		return "", models.ReasonTotalizerTarget, false
	case kindGroup:
		return "", models.ReasonNotLeaf, false
	}
	return id, "", true
}

type resolution struct {
	nodeID string
	reason models.UnmappedReason
	ok     bool
}

type unmappedKey struct {
	classification string
	reason         models.UnmappedReason
}

// Classify resolves every entry. Unmapped entries are excluded from the
// result and accumulated per classification in the diagnostics.
func (c *Classifier) Classify(entries []models.LedgerEntry) Classification {
	memo := make(map[string]resolution)
	unmapped := make(map[unmappedKey]*models.UnmappedClassification)
	out := Classification{Entries: make([]ClassifiedEntry, 0, len(entries))}
	ignored := decimal.Zero

	for _, e := range entries {
		r, seen := memo[e.Classification]
		if !seen {
			r.nodeID, r.reason, r.ok = c.Resolve(e.Classification)
			memo[e.Classification] = r
		}
		if r.ok {
			out.Entries = append(out.Entries, ClassifiedEntry{NodeID: r.nodeID, Entry: e})
			continue
		}

		key := unmappedKey{e.Classification, r.reason}
		u, exists := unmapped[key]
		if !exists {
			u = &models.UnmappedClassification{Classification: e.Classification, Reason: r.reason}
			unmapped[key] = u
		}
		u.Entries++
		u.Amount = models.NewAmount(u.Amount.Add(e.Amount))
		ignored = ignored.Add(e.Amount)
	}

	out.Diagnostics = models.Diagnostics{
		Unmapped:      make([]models.UnmappedClassification, 0, len(unmapped)),
		Processed:     len(out.Entries),
		Ignored:       len(entries) - len(out.Entries),
		IgnoredAmount: models.NewAmount(ignored),
	}
	for _, u := range unmapped {
		out.Diagnostics.Unmapped = append(out.Diagnostics.Unmapped, *u)
	}
	sort.Slice(out.Diagnostics.Unmapped, func(i, j int) bool {
		a, b := out.Diagnostics.Unmapped[i], out.Diagnostics.Unmapped[j]
		if a.Classification != b.Classification {
			return a.Classification < b.Classification
		}
		return a.Reason < b.Reason
	})
	return out
}

// Normalize strips punctuation, symbols and whitespace and case-folds s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
