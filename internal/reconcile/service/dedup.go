package service

import (
	"fmt"
	"strconv"

	"facility-recon/internal/reconcile/model"
)

// DupMarker отделяет суффикс у повторяющихся имён ("Clinic A*_2").
const DupMarker = "*_"

// Deduplicate проставляет UniqueName каждой записи.
// Имена, встречающиеся один раз, не меняются; члены группы повторов получают
// RawName*_k (k это порядковый номер внутри группы по исходной позиции).
// Порядок, количество и RawName сохраняются; иначе ErrInvariantViolation.
func Deduplicate(list model.NameList) (model.NameList, error) {
	counts := make(map[string]int, len(list.Records))
	for _, r := range list.Records {
		counts[r.RawName]++
	}

	// уникальные имена занимают своё место заранее, сгенерированные их обходят
	taken := make(map[string]struct{}, len(list.Records))
	for raw, n := range counts {
		if n == 1 {
			taken[raw] = struct{}{}
		}
	}

	ordinal := make(map[string]int)
	out := list
	out.Records = make([]model.NameRecord, len(list.Records))
	for i, r := range list.Records {
		if counts[r.RawName] == 1 {
			r.UniqueName = r.RawName
		} else {
			ordinal[r.RawName]++
			base := r.RawName + DupMarker + strconv.Itoa(ordinal[r.RawName])
			cand := base
			for n := 1; ; n++ {
				if _, busy := taken[cand]; !busy {
					break
				}
				cand = base + DupMarker + strconv.Itoa(n)
			}
			taken[cand] = struct{}{}
			r.UniqueName = cand
		}
		out.Records[i] = r
	}

	if err := checkDedup(list.Records, out.Records); err != nil {
		return model.NameList{}, err
	}
	return out, nil
}

func checkDedup(in, out []model.NameRecord) error {
	if len(in) != len(out) {
		return &model.InvariantError{Stage: "deduplicate",
			Detail: fmt.Sprintf("record count changed: %d -> %d", len(in), len(out))}
	}
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		if out[i].RawName != in[i].RawName {
			return &model.InvariantError{Stage: "deduplicate",
				Detail: fmt.Sprintf("row %d: raw name changed", i)}
		}
		if _, dup := seen[out[i].UniqueName]; dup {
			return &model.InvariantError{Stage: "deduplicate",
				Detail: fmt.Sprintf("unique name %q assigned twice", out[i].UniqueName)}
		}
		seen[out[i].UniqueName] = struct{}{}
	}
	return nil
}
