package dedupe

import (
	"sort"
	"strings"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/normalize"
)

// Pair is a candidate pair in canonical order (A < B).
type Pair struct {
	A uint
	B uint
}

// BlockKeys returns the cheap-signal bucket keys for a record: exact phone,
// truncated email local part plus domain, and calendar day. Records with none
// of the three fields emit no keys and are never paired.
func BlockKeys(c *models.ComplaintRecord) []string {
	var keys []string
	if c.Phone != nil {
		keys = append(keys, "p:"+*c.Phone)
	}
	if c.Email != nil {
		local, domain, ok := strings.Cut(*c.Email, "@")
		if ok {
			if len(local) > config.EmailBlockPrefixLen {
				local = local[:config.EmailBlockPrefixLen]
			}
			keys = append(keys, "e:"+local+"@"+domain)
		}
	}
	if c.Timestamp != nil {
		keys = append(keys, "d:"+normalize.Day(*c.Timestamp))
	}
	return keys
}

// CandidatePairs buckets records by block key and returns every unordered
// pair co-occurring in at least one bucket. A pair sharing several keys
// appears exactly once, and the result is sorted by (A, B) so downstream
// scoring and clustering are deterministic.
func CandidatePairs(recs []models.ComplaintRecord) []Pair {
	buckets := make(map[string][]uint)
	for i := range recs {
		for _, k := range BlockKeys(&recs[i]) {
			buckets[k] = append(buckets[k], recs[i].ID)
		}
	}

	seen := make(map[Pair]struct{})
	for _, ids := range buckets {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if a > b {
					a, b = b, a
				}
				seen[Pair{A: a, B: b}] = struct{}{}
			}
		}
	}

	pairs := make([]Pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}
