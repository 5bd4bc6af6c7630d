package sortedindex

import "testing"

func TestBuildIPPreservesMembership(t *testing.T) {
	ip := []int{2, 0, 1, 0, 2}
	idx := BuildIP(ip, 3)
	for level := 0; level < 3; level++ {
		for _, code := range idx.Codes[level] {
			if ip[code] != level {
				t.Errorf("code %d placed in level %d bucket, but IP[%d]=%d", code, level, code, ip[code])
			}
		}
	}
	// every code must appear in exactly one bucket
	seen := make(map[int]int)
	for level := 0; level < 3; level++ {
		for _, code := range idx.Codes[level] {
			seen[code]++
		}
	}
	for code := range ip {
		if seen[code] != 1 {
			t.Errorf("code %d appeared %d times across buckets, want 1", code, seen[code])
		}
	}
}

func TestBuildCPInvariants(t *testing.T) {
	// alphabet size 2, cp indexed prefix*2+q
	cp := []int{0, 1, 1, 0} // prefix0: q0->0 q1->1; prefix1: q0->1 q1->0
	idx := BuildCP(cp, 2, 2)

	for code, level := range cp {
		prefix := code / 2
		q := code % 2
		found := false
		for _, p := range idx.Extensions(level, prefix) {
			if p == q {
				found = true
			}
		}
		if !found {
			t.Errorf("CP[%d]=%d (prefix %d, q %d) missing from CP_sorted[%d][%d]", code, level, prefix, q, level, prefix)
		}
	}

	for prefix := 0; prefix < 2; prefix++ {
		total := 0
		for level := 0; level < 2; level++ {
			total += len(idx.Extensions(level, prefix))
		}
		if total != 2 {
			t.Errorf("prefix %d: total extensions across levels = %d, want alphabet size 2", prefix, total)
		}
	}
}

func TestBuildIPAllocatesOneBucketPerLevel(t *testing.T) {
	// levels are pre-clamped by model.readLevels before reaching this package;
	// BuildIP itself indexes straight into Codes[level] and will panic on an
	// out-of-range level, by design — the clamp contract lives at load time.
	ip := []int{0, 1, 2}
	idx := BuildIP(ip, 3)
	if len(idx.Codes) != 3 {
		t.Fatalf("want 3 level buckets, got %d", len(idx.Codes))
	}
}
