package dataprocessing

import (
	"fmt"

	apperrors "healthstats/internal/errors"
)

// Melt unpivots every non-identifier column into (varName, valueName) rows.
// Output is grouped by source column: all rows for the first value column,
// then all rows for the second, and so on.
func Melt(t *Table, idVars []string, varName, valueName string) (*Table, error) {
	if err := t.Require(idVars...); err != nil {
		return nil, err
	}

	isID := make(map[string]bool, len(idVars))
	idIdx := make([]int, len(idVars))
	for i, c := range idVars {
		isID[c] = true
		idIdx[i] = t.Index(c)
	}

	var valueIdx []int
	for i, c := range t.Columns {
		if !isID[c] {
			valueIdx = append(valueIdx, i)
		}
	}

	cols := append(append([]string(nil), idVars...), varName, valueName)
	out := NewTable(t.Name, cols)
	out.Rows = make([][]string, 0, len(t.Rows)*len(valueIdx))
	for _, vi := range valueIdx {
		label := t.Columns[vi]
		for _, row := range t.Rows {
			melted := make([]string, len(cols))
			for i, j := range idIdx {
				melted[i] = row[j]
			}
			melted[len(idIdx)] = label
			melted[len(idIdx)+1] = row[vi]
			out.Rows = append(out.Rows, melted)
		}
	}
	return out, nil
}

// JoinSpec describes an inner join. When LeftOn and RightOn name the same
// columns the key appears once in the output; otherwise both sides' key
// columns are kept.
type JoinSpec struct {
	LeftOn  []string
	RightOn []string
	// Suffixes disambiguate non-key columns present on both sides.
	// Defaults to "_x" and "_y".
	LeftSuffix  string
	RightSuffix string
}

// On builds a JoinSpec for keys with the same name on both sides.
func On(keys ...string) JoinSpec {
	return JoinSpec{LeftOn: keys, RightOn: keys}
}

// InnerJoin keeps only rows whose key exists on both sides. Rows follow left
// order, then right order within a key; duplicate keys fan out. Numeric keys
// compare by value, so "2000" matches "2000.0". Rows with an empty key cell
// never match.
func InnerJoin(left, right *Table, spec JoinSpec) (*Table, error) {
	if len(spec.LeftOn) == 0 || len(spec.LeftOn) != len(spec.RightOn) {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("join %s with %s: key lists must be non-empty and of equal length", left.Name, right.Name), nil)
	}
	if err := left.Require(spec.LeftOn...); err != nil {
		return nil, err
	}
	if err := right.Require(spec.RightOn...); err != nil {
		return nil, err
	}
	lsuf, rsuf := spec.LeftSuffix, spec.RightSuffix
	if lsuf == "" {
		lsuf = "_x"
	}
	if rsuf == "" {
		rsuf = "_y"
	}

	sameKeys := true
	for i := range spec.LeftOn {
		if spec.LeftOn[i] != spec.RightOn[i] {
			sameKeys = false
			break
		}
	}

	leftKey := make(map[string]bool)
	if sameKeys {
		for _, c := range spec.LeftOn {
			leftKey[c] = true
		}
	}
	rightKey := make(map[string]bool)
	for _, c := range spec.RightOn {
		rightKey[c] = true
	}

	// Right columns carried into the output.
	var rightIdx []int
	rightNames := make(map[string]bool)
	for i, c := range right.Columns {
		if sameKeys && rightKey[c] {
			continue
		}
		rightIdx = append(rightIdx, i)
		rightNames[c] = true
	}

	cols := make([]string, 0, len(left.Columns)+len(rightIdx))
	for _, c := range left.Columns {
		if rightNames[c] && !leftKey[c] {
			c += lsuf
		}
		cols = append(cols, c)
	}
	leftNames := make(map[string]bool, len(left.Columns))
	for _, c := range left.Columns {
		leftNames[c] = true
	}
	for _, i := range rightIdx {
		c := right.Columns[i]
		if leftNames[c] {
			c += rsuf
		}
		cols = append(cols, c)
	}

	lk := keyIndexes(left, spec.LeftOn)
	rk := keyIndexes(right, spec.RightOn)

	buckets := make(map[string][]int)
	for i, row := range right.Rows {
		key, ok := joinKey(row, rk)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], i)
	}

	out := NewTable(left.Name, cols)
	for _, lrow := range left.Rows {
		key, ok := joinKey(lrow, lk)
		if !ok {
			continue
		}
		for _, ri := range buckets[key] {
			rrow := right.Rows[ri]
			joined := make([]string, 0, len(cols))
			joined = append(joined, lrow...)
			for _, i := range rightIdx {
				joined = append(joined, rrow[i])
			}
			out.Rows = append(out.Rows, joined)
		}
	}
	return out, nil
}

func keyIndexes(t *Table, cols []string) []int {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	return idx
}

func joinKey(row []string, idx []int) (string, bool) {
	parts := make([]byte, 0, 32)
	for i, j := range idx {
		v := row[j]
		if v == "" {
			return "", false
		}
		if i > 0 {
			parts = append(parts, 0x1f)
		}
		parts = append(parts, canonicalKey(v)...)
	}
	return string(parts), true
}
