package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"facility-recon/internal/config"
	"facility-recon/internal/fileio"
	"facility-recon/internal/reconcile/model"
	recSvc "facility-recon/internal/reconcile/service"
	"facility-recon/internal/storage"
)

// RunStore: история запусков (storage.SQLiteStorage).
type RunStore interface {
	SaveRun(ctx context.Context, r storage.Run) error
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (storage.Run, error)
}

// Publisher: выкладка выгрузок (publish.S3Publisher).
type Publisher interface {
	Publish(ctx context.Context, runID, ext, contentType string, body []byte) (string, error)
}

// Deps: History и Publisher могут быть nil (выключены).
type Deps struct {
	Cfg       config.Config
	Logger    zerolog.Logger
	History   RunStore
	Publisher Publisher
}

type inputInfo struct {
	Filename string `json:"filename"`
	Column   string `json:"column"`
	Rows     int    `json:"rows"`
}

type reconcileResponse struct {
	RunID string `json:"runId"`
	model.Result
	SummaryTable []model.SummaryRow `json:"summaryTable"`
	Master       inputInfo          `json:"master"`
	Reference    inputInfo          `json:"reference"`
}

// Reconcile возвращает http.HandlerFunc для r.Post("/reconcile", ...).
// Ожидает multipart с файлами master и reference (fileA/fileB тоже принимаются).
func Reconcile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())
		if log.GetLevel() == zerolog.Disabled {
			log = &d.Logger
		}

		maxMem := int64(d.Cfg.MaxUploadMB) << 20
		if err := r.ParseMultipartForm(maxMem); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "upload too large", nil)
				return
			}
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error(), nil)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		opt, err := parseOptions(r, d.Cfg)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		scorer, err := recSvc.NewScorer(opt.Scorer)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		format, err := parseFormat(r.FormValue("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		publish := toBool(r.FormValue("publish"), false)
		if publish && (d.Publisher == nil || format == formatJSON) {
			writeError(w, http.StatusBadRequest, "publish needs format=csv|xlsx and a configured S3 bucket", nil)
			return
		}

		// Читаем оба входа и сообщаем обо всех сломанных сразу
		master, masterInfo, errM := loadInput(r, "master", "fileA")
		reference, refInfo, errR := loadInput(r, "reference", "fileB")
		for _, e := range []error{errM, errR} {
			if errors.Is(e, model.ErrInvariantViolation) {
				log.Error().Err(e).Msg("deduplicate failed")
				writeError(w, http.StatusInternalServerError, e.Error(), nil)
				return
			}
		}
		if inputs := inputErrors(errM, errR); len(inputs) > 0 {
			log.Warn().Interface("inputs", inputs).Msg("reconcile rejected")
			writeError(w, http.StatusBadRequest, "invalid input", inputs)
			return
		}

		log.Debug().
			Str("master_column", master.Column).
			Str("reference_column", reference.Column).
			Int("master_rows", master.Len()).
			Int("reference_rows", reference.Len()).
			Msg("inputs loaded")

		res, err := recSvc.RunWith(master, reference, opt, scorer, nil)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrInvalidThreshold) {
				status = http.StatusBadRequest
			}
			log.Error().Err(err).Msg("reconcile failed")
			writeError(w, status, err.Error(), nil)
			return
		}

		runID := uuid.NewString()
		elapsed := time.Since(start)
		log.Info().
			Str("run_id", runID).
			Str("scorer", res.Opts.Scorer).
			Float64("threshold", res.Opts.Threshold).
			Int("master", res.Summary.TotalMaster).
			Int("reference", res.Summary.TotalReference).
			Int("exact", res.Summary.Exact).
			Int("high", res.Summary.High).
			Int("low", res.Summary.Low).
			Dur("elapsed", elapsed).
			Msg("reconcile done")

		if d.History != nil {
			run := storage.Run{
				ID:              runID,
				CreatedAt:       start,
				MasterSource:    masterInfo.Filename,
				ReferenceSource: refInfo.Filename,
				Scorer:          res.Opts.Scorer,
				Threshold:       res.Opts.Threshold,
				Summary:         res.Summary,
				Duration:        elapsed,
			}
			if err := d.History.SaveRun(r.Context(), run); err != nil {
				log.Error().Err(err).Str("run_id", runID).Msg("save run history")
			}
		}

		w.Header().Set("X-Run-ID", runID)
		w.Header().Set("Cache-Control", "no-store")

		if format == formatJSON {
			writeJSON(w, http.StatusOK, reconcileResponse{
				RunID:        runID,
				Result:       res,
				SummaryTable: res.Summary.Table(),
				Master:       masterInfo,
				Reference:    refInfo,
			})
			return
		}

		var buf bytes.Buffer
		if err := writeReport(&buf, format, res); err != nil {
			log.Error().Err(err).Msg("render report")
			writeError(w, http.StatusInternalServerError, "failed to render report", nil)
			return
		}
		if publish {
			key, err := d.Publisher.Publish(r.Context(), runID, format.ext(), format.contentType(), buf.Bytes())
			if err != nil {
				log.Error().Err(err).Str("run_id", runID).Msg("publish report")
				writeError(w, http.StatusBadGateway, "failed to publish report", nil)
				return
			}
			w.Header().Set("X-Report-Key", key)
		}

		w.Header().Set("Content-Type", format.contentType())
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="reconciliation-%s.%s"`, runID[:8], format.ext()))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Error().Err(err).Msg("write report")
		}
	}
}

// Runs: GET /runs?limit=N, последние запуски.
func Runs(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.History == nil {
			writeError(w, http.StatusNotFound, "run history is disabled", nil)
			return
		}
		runs, err := d.History.ListRuns(r.Context(), atoi(r.URL.Query().Get("limit"), 20))
		if err != nil {
			d.Logger.Error().Err(err).Msg("list runs")
			writeError(w, http.StatusInternalServerError, "failed to list runs", nil)
			return
		}
		if runs == nil {
			runs = []storage.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

// RunByID: GET /runs/{id}.
func RunByID(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.History == nil {
			writeError(w, http.StatusNotFound, "run history is disabled", nil)
			return
		}
		run, err := d.History.GetRun(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error(), nil)
		case err != nil:
			d.Logger.Error().Err(err).Msg("get run")
			writeError(w, http.StatusInternalServerError, "failed to load run", nil)
		default:
			writeJSON(w, http.StatusOK, run)
		}
	}
}

// loadInput читает файл формы и строит список имён.
// Ошибки всегда *model.InputFormatError с указанием входа.
func loadInput(r *http.Request, input, alias string) (model.NameList, inputInfo, error) {
	f, hdr, err := r.FormFile(input)
	if errors.Is(err, http.ErrMissingFile) && alias != "" {
		f, hdr, err = r.FormFile(alias)
	}
	if err != nil {
		return model.NameList{}, inputInfo{}, model.NewInputFormatError(input, "file is missing", err)
	}
	defer f.Close()

	info := inputInfo{Filename: hdr.Filename}
	table, err := fileio.ReadTable(f, hdr.Filename, atoi(r.FormValue(input+"_header_row"), 1))
	if err != nil {
		return model.NameList{}, info, model.NewInputFormatError(input, "cannot read "+hdr.Filename, err)
	}
	list, err := recSvc.NewNameList(table, input, r.FormValue(input+"_column"))
	if err != nil {
		return model.NameList{}, info, err
	}
	info.Column = list.Column
	info.Rows = list.Len()
	return list, info, nil
}
