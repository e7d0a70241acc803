package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"facility-recon/internal/config"
	"facility-recon/internal/reconcile/model"
	recSvc "facility-recon/internal/reconcile/service"
	"facility-recon/internal/utils"
)

type reportFormat string

const (
	formatJSON reportFormat = "json"
	formatCSV  reportFormat = "csv"
	formatXLSX reportFormat = "xlsx"
)

func parseFormat(s string) (reportFormat, error) {
	switch f := reportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return formatJSON, nil
	case formatJSON, formatCSV, formatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (json, csv, xlsx)", s)
	}
}

func (f reportFormat) ext() string { return string(f) }

func (f reportFormat) contentType() string {
	switch f {
	case formatCSV:
		return "text/csv; charset=utf-8"
	case formatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

func writeReport(w io.Writer, f reportFormat, res model.Result) error {
	return recSvc.WriteReport(w, f.ext(), res)
}

// parseOptions: значения формы поверх дефолтов из конфига (нормализация по умолчанию выключена).
func parseOptions(r *http.Request, cfg config.Config) (model.Options, error) {
	opt := model.Options{
		Threshold: cfg.Threshold,
		Scorer:    cfg.Scorer,
		Normalize: model.Normalize{
			Lowercase:      toBool(r.FormValue("lowercase"), false),
			StripPunct:     toBool(r.FormValue("strip_punct"), false),
			FoldDiacritics: toBool(r.FormValue("fold_diacritics"), false),
			TokenSort:      toBool(r.FormValue("token_sort"), false),
		},
	}
	if s := r.FormValue("scorer"); s != "" {
		opt.Scorer = s
	}
	if s := r.FormValue("threshold"); s != "" {
		t, ok := utils.ParseNumber(s)
		if !ok {
			return opt, fmt.Errorf("threshold %q is not a number", s)
		}
		opt.Threshold = t
	}
	if opt.Threshold < 0 || opt.Threshold > 100 {
		return opt, fmt.Errorf("%w: got %v", model.ErrInvalidThreshold, opt.Threshold)
	}
	return opt, nil
}

type inputError struct {
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

func inputErrors(errs ...error) []inputError {
	var out []inputError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ife *model.InputFormatError
		if errors.As(err, &ife) {
			out = append(out, inputError{Input: ife.Input, Reason: ife.Error()})
			continue
		}
		out = append(out, inputError{Reason: err.Error()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, inputs []inputError) {
	body := map[string]any{"error": msg}
	if len(inputs) > 0 {
		body["inputs"] = inputs
	}
	writeJSON(w, status, body)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
