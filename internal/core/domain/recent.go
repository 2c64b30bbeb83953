package domain

// MaxRecentlyViewed caps the per-user recently viewed list.
const MaxRecentlyViewed = 10

// PushRecent returns ids with id moved (or inserted) at the front, without
// duplicates, truncated to limit entries. ids is not modified.
func PushRecent(ids []string, id string, limit int) []string {
	if limit <= 0 {
		limit = MaxRecentlyViewed
	}
	out := make([]string, 0, limit)
	out = append(out, id)
	for _, existing := range ids {
		if len(out) == limit {
			break
		}
		if existing == id {
			continue
		}
		out = append(out, existing)
	}
	return out
}
