package model

// Status: двухуровневый итог сопоставления (для таблиц вывода).
type Status string

const (
	StatusMatched   Status = "Matched"
	StatusUnmatched Status = "Unmatched"
)

// Tier: трёхуровневая классификация для сводной статистики.
type Tier string

const (
	TierExact Tier = "Exact Match"
	TierHigh  Tier = "High Match"
	TierLow   Tier = "Low Match"
)

// DefaultThreshold: порог схожести по умолчанию (0..100).
const DefaultThreshold = 70.0

type NameRecord struct {
	RawName    string            `json:"rawName"`    // как в файле
	UniqueName string            `json:"uniqueName"` // RawName или RawName*_k
	SourceRow  int               `json:"sourceRow"`  // номер строки данных (1-based)
	Fields     map[string]string `json:"fields,omitempty"`
}

type NameList struct {
	Source  string       `json:"source"`  // master | reference
	Column  string       `json:"column"`  // колонка с наименованием
	Columns []string     `json:"columns"` // порядок сквозных колонок
	Records []NameRecord `json:"records"`
}

func (l NameList) Len() int { return len(l.Records) }

// Normalize: опции предобработки перед подсчётом схожести.
type Normalize struct {
	Lowercase      bool `json:"lowercase"`
	StripPunct     bool `json:"stripPunct"`
	FoldDiacritics bool `json:"foldDiacritics"`
	TokenSort      bool `json:"tokenSort"`
}

type Options struct {
	Threshold float64   `json:"threshold"` // 0..100
	Scorer    string    `json:"scorer"`
	Normalize Normalize `json:"normalize"`
}

type MatchResult struct {
	MasterName        string            `json:"masterName"`
	MasterUniqueName  string            `json:"masterUniqueName"`
	SourceRow         int               `json:"sourceRow"`
	BestReference     *string           `json:"bestReference"`     // unique name, nil если B пуст
	BestReferenceName *string           `json:"bestReferenceName"` // исходный текст из B
	Score             float64           `json:"score"`             // округлено до 0.01
	Status            Status            `json:"status"`
	Tier              Tier              `json:"tier"`
	ReconciledName    string            `json:"reconciledName"`
	Fields            map[string]string `json:"fields,omitempty"`
}

// Accepted: мастер-имя заменено (или подтверждено) именем из справочника.
func (m MatchResult) Accepted() bool { return m.Status == StatusMatched }

type SummaryRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalMaster    int     `json:"totalMaster"`
	TotalReference int     `json:"totalReference"`
	Exact          int     `json:"exact"`
	High           int     `json:"high"`
	Low            int     `json:"low"`
	Threshold      float64 `json:"threshold"`
}

// Table: сводка в виде label → count.
func (s Summary) Table() []SummaryRow {
	return []SummaryRow{
		{Label: "Total master records", Count: s.TotalMaster},
		{Label: "Total reference records", Count: s.TotalReference},
		{Label: string(TierExact), Count: s.Exact},
		{Label: string(TierHigh), Count: s.High},
		{Label: string(TierLow), Count: s.Low},
	}
}

func (s Summary) Matched() int { return s.Exact + s.High }

type Result struct {
	Rows       []MatchResult `json:"rows"`
	Summary    Summary       `json:"summary"`
	Reconciled []string      `json:"reconciled"`
	Opts       Options       `json:"opts"`
	// колонки мастер-файла для экспорта сквозных полей
	MasterColumns []string `json:"masterColumns"`
}
