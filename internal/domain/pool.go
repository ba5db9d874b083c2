package domain

import (
	"math/rand"
	"sort"
)

// CanonicalLengths is the classic fleet: carrier, battleship, cruiser, submarine, destroyer.
var CanonicalLengths = []int{5, 4, 3, 3, 2}

// ShipPool derives the lengths to place for a target number of ship tiles.
//
// Shuffled copies of CanonicalLengths are appended while the smallest length
// still fits, trailing entries are trimmed until the sum is at most target,
// and the remainder is topped up with the largest canonical lengths that fit.
// The top-up departs from plain trimming, which would accept any shortfall:
// a target of 4 whose shuffled block starts with 5 would otherwise trim to an
// empty pool. The sum never exceeds target and falls short by less than the
// smallest canonical length. A target that is an exact multiple of the
// canonical sum yields whole blocks only.
func ShipPool(rng *rand.Rand, target int) []int {
	lengths := distinctDescending(CanonicalLengths)
	smallest := lengths[len(lengths)-1]

	var pool []int
	sum := 0
	for sum+smallest <= target {
		block := append([]int(nil), CanonicalLengths...)
		rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
		pool = append(pool, block...)
		for _, l := range block {
			sum += l
		}
	}
	for sum > target && len(pool) > 0 {
		sum -= pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	for {
		added := false
		for _, l := range lengths {
			if sum+l <= target {
				pool = append(pool, l)
				sum += l
				added = true
				break
			}
		}
		if !added {
			return pool
		}
	}
}

// PoolTiles sums a pool.
func PoolTiles(pool []int) int {
	n := 0
	for _, l := range pool {
		n += l
	}
	return n
}

func distinctDescending(in []int) []int {
	seen := make(map[int]bool, len(in))
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
