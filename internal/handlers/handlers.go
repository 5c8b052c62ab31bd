// Package handlers exposes the classification pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/engagelens/engage-api/internal/engagement"
	"github.com/engagelens/engage-api/internal/imaging"
	"github.com/engagelens/engage-api/internal/model"
	"github.com/engagelens/engage-api/internal/service"
)

const (
	serviceName = "Student Engagement Classification API"
	version     = "1.0.0"
)

// Handler serves the prediction endpoints. svc and meta are nil when the
// model failed to load; the liveness endpoint keeps answering either way,
// prediction endpoints report the model as unavailable.
type Handler struct {
	svc  *service.Service
	meta *model.Metadata
	log  *slog.Logger
}

func New(svc *service.Service, meta *model.Metadata, log *slog.Logger) *Handler {
	return &Handler{svc: svc, meta: meta, log: log}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.root)
	mux.HandleFunc("/model/info", h.modelInfo)
	mux.HandleFunc("/predict", h.predict)
	mux.HandleFunc("/predict/batch", h.predictBatch)
	return mux
}

type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version"`
}

type infoResponse struct {
	ModelName     string   `json:"model_name"`
	InputShape    []int64  `json:"input_shape"`
	OutputClasses int      `json:"output_classes"`
	ClassNames    []string `json:"class_names"`
	ImageSize     []int    `json:"image_size"`
	Description   string   `json:"description"`
}

type predictRequest struct {
	Image *string `json:"image"`
}

type batchRequest struct {
	Images *[]string `json:"images"`
}

type predictionResponse struct {
	Success            bool               `json:"success"`
	PredictedClass     string             `json:"predicted_class"`
	Confidence         float64            `json:"confidence"`
	EngagementScore    float64            `json:"engagement_score"`
	ClassProbabilities map[string]float64 `json:"class_probabilities"`
}

type batchPrediction struct {
	ImageIndex         int                `json:"image_index"`
	PredictedClass     string             `json:"predicted_class"`
	Confidence         float64            `json:"confidence"`
	EngagementScore    float64            `json:"engagement_score"`
	ClassProbabilities map[string]float64 `json:"class_probabilities"`
}

type batchFailure struct {
	ImageIndex int    `json:"image_index"`
	Error      string `json:"error"`
}

type batchResponse struct {
	Success               bool  `json:"success"`
	TotalImages           int   `json:"total_images"`
	SuccessfulPredictions int   `json:"successful_predictions"`
	Results               []any `json:"results"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Service:     serviceName,
		ModelLoaded: h.svc != nil,
		Version:     version,
	})
}

func (h *Handler) modelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.meta == nil {
		writeError(w, http.StatusInternalServerError, "model not loaded")
		return
	}

	writeJSON(w, http.StatusOK, infoResponse{
		ModelName:     h.meta.ModelName,
		InputShape:    []int64{imaging.Height, imaging.Width, imaging.Channels},
		OutputClasses: engagement.NumClasses,
		ClassNames:    engagement.Labels(),
		ImageSize:     []int{imaging.Height, imaging.Width},
		Description:   h.meta.Description,
	})
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "model not loaded")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Image == nil {
		writeError(w, http.StatusBadRequest, "no image data provided")
		return
	}

	result, err := h.svc.ClassifyImage(r.Context(), *req.Image)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Success:            true,
		PredictedClass:     result.Class.Label,
		Confidence:         result.Confidence,
		EngagementScore:    round3(result.Score),
		ClassProbabilities: result.Probabilities,
	})
}

func (h *Handler) predictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "model not loaded")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Images == nil {
		writeError(w, http.StatusBadRequest, "no images data provided")
		return
	}

	batch, err := h.svc.ClassifyBatch(r.Context(), *req.Images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrBatchTooLarge):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("batch prediction failed", "error", err)
			writeError(w, http.StatusInternalServerError, "batch prediction failed")
		}
		return
	}

	results := make([]any, 0, len(batch.Items))
	for _, item := range batch.Items {
		if item.Err != nil {
			results = append(results, batchFailure{ImageIndex: item.Index, Error: item.Err.Error()})
			continue
		}
		results = append(results, batchPrediction{
			ImageIndex:         item.Index,
			PredictedClass:     item.Result.Class.Label,
			Confidence:         item.Result.Confidence,
			EngagementScore:    round3(item.Result.Score),
			ClassProbabilities: item.Result.Probabilities,
		})
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Success:               true,
		TotalImages:           batch.Total,
		SuccessfulPredictions: batch.Successful,
		Results:               results,
	})
}

// writePipelineError maps a single-image pipeline error onto an HTTP status.
// Input problems surface verbatim as 400s; anything else stays a generic 500
// so internal detail never leaks.
func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, imaging.ErrDecode) || errors.Is(err, imaging.ErrPreprocess) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error("prediction failed", "error", err)
	writeError(w, http.StatusInternalServerError, "prediction failed")
}

// Scores are reported to three decimals; full precision stays internal.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
