package service

import (
	"fmt"
	"math"

	"facility-recon/internal/reconcile/model"
)

// ProgressFunc вызывается синхронно после каждой строки мастер-списка.
type ProgressFunc func(done, total int)

// Run: сверка с оценщиком по имени из opt.Scorer.
func Run(master, reference model.NameList, opt model.Options) (model.Result, error) {
	sc, err := NewScorer(opt.Scorer)
	if err != nil {
		return model.Result{}, err
	}
	return RunWith(master, reference, opt, sc, nil)
}

// RunWith: основная сверка: каждый мастер против всего справочника, без индекса.
// Функция чистая: всё состояние живёт в пределах одного вызова.
func RunWith(master, reference model.NameList, opt model.Options, sc Scorer, progress ProgressFunc) (model.Result, error) {
	if math.IsNaN(opt.Threshold) || opt.Threshold < 0 || opt.Threshold > 100 {
		return model.Result{}, fmt.Errorf("%w: got %v", model.ErrInvalidThreshold, opt.Threshold)
	}
	opt.Scorer = sc.Name()

	// UniqueName выводится из RawName детерминированно, так что повтор безопасен
	master, err := Deduplicate(master)
	if err != nil {
		return model.Result{}, fmt.Errorf("master: %w", err)
	}
	reference, err = Deduplicate(reference)
	if err != nil {
		return model.Result{}, fmt.Errorf("reference: %w", err)
	}

	// 1) точные совпадения исходного текста: первое вхождение в B
	exact := make(map[string]int, reference.Len())
	for j, r := range reference.Records {
		if _, ok := exact[r.RawName]; !ok {
			exact[r.RawName] = j
		}
	}

	// 2) нормализованный B считаем один раз на запуск
	refNorm := make([]string, reference.Len())
	for j, r := range reference.Records {
		refNorm[j] = normalize(r.RawName, opt.Normalize)
	}

	total := master.Len()
	rows := make([]model.MatchResult, 0, total)
	for i, m := range master.Records {
		res := model.MatchResult{
			MasterName:       m.RawName,
			MasterUniqueName: m.UniqueName,
			SourceRow:        m.SourceRow,
			Fields:           m.Fields,
		}

		if j, ok := exact[m.RawName]; ok {
			ref := reference.Records[j]
			res.BestReference = strPtr(ref.UniqueName)
			res.BestReferenceName = strPtr(ref.RawName)
			res.Score = 100
			res.Status = model.StatusMatched
			res.Tier = model.TierExact
			res.ReconciledName = m.RawName
		} else {
			best, score := bestMatch(normalize(m.RawName, opt.Normalize), refNorm, sc)
			if best >= 0 {
				ref := reference.Records[best]
				res.BestReference = strPtr(ref.UniqueName)
				res.BestReferenceName = strPtr(ref.RawName)
			}
			res.Score = score
			classify(&res, opt.Threshold)
		}

		rows = append(rows, res)
		if progress != nil {
			progress(i+1, total)
		}
	}

	summary, err := Summarize(rows, reference.Len(), opt.Threshold)
	if err != nil {
		return model.Result{}, err
	}

	return model.Result{
		Rows:          rows,
		Summary:       summary,
		Reconciled:    ReconciledNames(rows),
		Opts:          opt,
		MasterColumns: master.Columns,
	}, nil
}

// bestMatch: проход слева направо; лучший заменяется только при строгом улучшении,
// так что при равенстве побеждает более ранняя запись. -1, если B пуст.
func bestMatch(name string, refs []string, sc Scorer) (int, float64) {
	best, bestScore := -1, -1.0
	for j, ref := range refs {
		var s float64
		if name == ref {
			s = 100
		} else {
			s = roundScore(sc.Similarity(name, ref))
		}
		if s > bestScore {
			best, bestScore = j, s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}

// classify: порог сравнивается с уже округлённым баллом, как его видит пользователь.
func classify(res *model.MatchResult, threshold float64) {
	switch {
	case res.BestReference == nil:
		res.Status, res.Tier = model.StatusUnmatched, model.TierLow
		res.ReconciledName = res.MasterName
	case res.Score >= 100:
		res.Status, res.Tier = model.StatusMatched, model.TierExact
		res.ReconciledName = *res.BestReferenceName
	case res.Score >= threshold:
		res.Status, res.Tier = model.StatusMatched, model.TierHigh
		res.ReconciledName = *res.BestReferenceName
	default:
		res.Status, res.Tier = model.StatusUnmatched, model.TierLow
		res.ReconciledName = res.MasterName
	}
}

// Summarize: счётчики по уровням; Exact+High+Low обязаны покрыть весь мастер.
func Summarize(rows []model.MatchResult, totalReference int, threshold float64) (model.Summary, error) {
	s := model.Summary{
		TotalMaster:    len(rows),
		TotalReference: totalReference,
		Threshold:      threshold,
	}
	for i, r := range rows {
		if r.Accepted() == (r.Tier == model.TierLow) {
			return model.Summary{}, &model.InvariantError{Stage: "summary",
				Detail: fmt.Sprintf("row %d: status %q contradicts tier %q", i, r.Status, r.Tier)}
		}
		switch r.Tier {
		case model.TierExact:
			s.Exact++
		case model.TierHigh:
			s.High++
		case model.TierLow:
			s.Low++
		}
	}
	if s.Exact+s.High+s.Low != s.TotalMaster {
		return model.Summary{}, &model.InvariantError{Stage: "summary",
			Detail: fmt.Sprintf("exact %d + high %d + low %d != master %d", s.Exact, s.High, s.Low, s.TotalMaster)}
	}
	return s, nil
}

// ReconciledNames: исправленный список в порядке мастер-файла.
func ReconciledNames(rows []model.MatchResult) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ReconciledName
	}
	return out
}

func strPtr(s string) *string { return &s }
