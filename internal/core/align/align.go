// Package align matches publication records from two sources.
//
// Every record yields a few keys (dblp id, normalized title, doi). Keys that
// occur on the same record are unioned, so two records sharing any key,
// directly or through a chain of other records, land in the same group.
// Each group is named by its canonical key and holds at most one record per
// side.
package align

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/bibalign/internal/core/model"
)

// Side describes how to read records of one source.
type Side[T any] struct {
	Name string
	Keys func(T) []model.PubKey
	ID   func(T) string
}

// KeySet is a set of canonical keys.
type KeySet map[model.PubKey]struct{}

func (s KeySet) Has(k model.PubKey) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys ordered by their string form.
func (s KeySet) Sorted() []model.PubKey {
	keys := make([]model.PubKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b model.PubKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

type Alignments[L, R any] struct {
	LeftMap        map[model.PubKey]L
	RightMap       map[model.PubKey]R
	Matched        KeySet
	UnmatchedLeft  KeySet
	UnmatchedRight KeySet
	Warnings       []model.AlignmentWarning
}

// Align groups left and right records by shared keys. Left keys are unioned
// before right keys, each side in input order. When several records of one
// side share a group the first one is kept and a warning lists all of them.
// Records without keys take no part. Align panics on nil slices.
func Align[L, R any](left []L, right []R, ls Side[L], rs Side[R]) Alignments[L, R] {
	if left == nil || right == nil {
		panic("align: nil record slice")
	}

	// 1. Union every record's keys
	ds := NewDisjointSet[model.PubKey]()
	leftKeys := unionKeys(ds, left, ls)
	rightKeys := unionKeys(ds, right, rs)

	// 2. Group each side by canonical key
	var warnings []model.AlignmentWarning
	leftMap := pick(ds, left, leftKeys, ls, &warnings)
	rightMap := pick(ds, right, rightKeys, rs, &warnings)

	// 3. Partition canonical keys
	a := Alignments[L, R]{
		LeftMap:        leftMap,
		RightMap:       rightMap,
		Matched:        KeySet{},
		UnmatchedLeft:  KeySet{},
		UnmatchedRight: KeySet{},
		Warnings:       warnings,
	}
	for k := range leftMap {
		if _, ok := rightMap[k]; ok {
			a.Matched[k] = struct{}{}
		} else {
			a.UnmatchedLeft[k] = struct{}{}
		}
	}
	for k := range rightMap {
		if _, ok := leftMap[k]; !ok {
			a.UnmatchedRight[k] = struct{}{}
		}
	}
	return a
}

func unionKeys[T any](ds *DisjointSet[model.PubKey], records []T, side Side[T]) [][]model.PubKey {
	all := make([][]model.PubKey, len(records))
	for i, rec := range records {
		keys := side.Keys(rec)
		all[i] = keys
		if len(keys) == 0 {
			continue
		}
		ds.Add(keys[0])
		for _, k := range keys[1:] {
			ds.Union(keys[0], k)
		}
	}
	return all
}

func pick[T any](ds *DisjointSet[model.PubKey], records []T, keys [][]model.PubKey, side Side[T], warnings *[]model.AlignmentWarning) map[model.PubKey]T {
	var order []model.PubKey
	groups := make(map[model.PubKey][]T)
	for i, rec := range records {
		if len(keys[i]) == 0 {
			continue
		}
		canon := ds.Find(keys[i][0])
		if _, seen := groups[canon]; !seen {
			order = append(order, canon)
		}
		groups[canon] = append(groups[canon], rec)
	}

	out := make(map[model.PubKey]T, len(groups))
	for _, canon := range order {
		members := groups[canon]
		out[canon] = members[0]
		if len(members) > 1 {
			ids := make([]string, len(members))
			for i, m := range members {
				ids[i] = side.ID(m)
			}
			*warnings = append(*warnings, model.AlignmentWarning{
				Msg: fmt.Sprintf("%d %s records share key %s", len(members), side.Name, canon),
				IDs: ids,
			})
		}
	}
	return out
}
