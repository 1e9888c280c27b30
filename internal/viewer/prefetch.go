package viewer

// prefetchOffsets is the neighbourhood requested around the standardized
// page: two before and three after, whatever the direction or spread state.
var prefetchOffsets = []int{-1, -2, 1, 2, 3}

// PrefetchPages returns the pages to warm around std. Pages before std are
// clamped to 1 and pages after it to total; while the total is unknown the
// upper clamp is 1, so nothing ahead is requested until the count arrives.
// Duplicates and std itself are dropped.
func PrefetchPages(std, total int) []int {
	upper := total
	if upper == UnknownTotal {
		upper = 1
	}

	seen := map[int]bool{std: true}
	pages := make([]int, 0, len(prefetchOffsets))
	for _, off := range prefetchOffsets {
		p := std + off
		if off < 0 {
			p = max(p, 1)
		} else {
			p = min(p, upper)
		}
		if p < 1 || seen[p] {
			continue
		}
		seen[p] = true
		pages = append(pages, p)
	}
	return pages
}
