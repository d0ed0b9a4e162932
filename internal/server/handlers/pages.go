package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/inkpage/internal/history"
	"github.com/iudanet/inkpage/internal/models"
	"github.com/iudanet/inkpage/internal/pagestore"
	"github.com/iudanet/inkpage/internal/validation"
	"github.com/iudanet/inkpage/pkg/api"
)

// PageVar имя переменной маршрута с ключом страницы
const PageVar = "page"

// maxBodySize ограничение размера тела запроса
const maxBodySize = 1 << 20

const historyTruncatedMessage = "history truncated, reload the page snapshot"

// PageService определяет операции над страницами, нужные HTTP слою
type PageService interface {
	GetSnapshot(ctx context.Context, key string) (*pagestore.Snapshot, error)
	AddShape(ctx context.Context, key string, in validation.ShapeInput) (pagestore.Result, error)
	DeleteShape(ctx context.Context, key string, in validation.ShapeInput) (pagestore.Result, error)
	FadeShapes(ctx context.Context, key string, alphaDelta, cutoff float64) error
	StreamUpdates(ctx context.Context, key string, since int64) (history.Batch, error)
}

// PageHandler обрабатывает запросы к страницам
type PageHandler struct {
	logger  *slog.Logger
	service PageService
}

// NewPageHandler создает новый handler для страниц
func NewPageHandler(logger *slog.Logger, service PageService) *PageHandler {
	return &PageHandler{
		logger:  logger,
		service: service,
	}
}

// Snapshot обрабатывает GET /api/v1/pages/{page}
// Возвращает фигуры страницы и watermark для подписки на обновления
func (h *PageHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.pageKey(w, r)
	if !ok {
		return
	}

	snap, err := h.service.GetSnapshot(ctx, key)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get snapshot", slog.String("page", key), slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SnapshotResponse{
		Shapes:     toAPIShapes(snap.Shapes),
		NextID:     snap.NextID,
		NextUpdate: snap.NextUpdate,
		First:      snap.First,
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// AddShape обрабатывает POST /api/v1/pages/{page}/shapes
func (h *PageHandler) AddShape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.pageKey(w, r)
	if !ok {
		return
	}

	in, ok := h.decodeShape(w, r)
	if !ok {
		return
	}

	res, err := h.service.AddShape(ctx, key, in)
	if err != nil {
		h.sendMutationError(ctx, w, key, err)
		return
	}

	status := http.StatusCreated
	if res.Status == pagestore.StatusDuplicate {
		status = http.StatusConflict
	}

	h.sendJSON(w, toShapeResponse(res), status)
}

// DeleteShape обрабатывает DELETE /api/v1/pages/{page}/shapes
func (h *PageHandler) DeleteShape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.pageKey(w, r)
	if !ok {
		return
	}

	in, ok := h.decodeShape(w, r)
	if !ok {
		return
	}

	res, err := h.service.DeleteShape(ctx, key, in)
	if err != nil {
		h.sendMutationError(ctx, w, key, err)
		return
	}

	status := http.StatusOK
	if res.Status == pagestore.StatusNotFound {
		status = http.StatusNotFound
	}

	h.sendJSON(w, toShapeResponse(res), status)
}

// Fade обрабатывает POST /api/v1/pages/{page}/fade
func (h *PageHandler) Fade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.pageKey(w, r)
	if !ok {
		return
	}

	var req api.FadeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode fade request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// FadeShapes принимает любой delta, но по HTTP фигуры можно только гасить
	if req.Delta <= 0 {
		h.sendError(w, "delta must be positive", http.StatusBadRequest)
		return
	}

	if err := h.service.FadeShapes(ctx, key, req.Delta, req.Cutoff); err != nil {
		h.sendMutationError(ctx, w, key, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Updates обрабатывает GET /api/v1/pages/{page}/updates?since=N
// Long-poll: отвечает, как только появятся события новее since,
// либо пустым heartbeat по таймауту. 410 означает, что события после since
// утеряны и нужно заново прочитать снимок.
func (h *PageHandler) Updates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, ok := h.pageKey(w, r)
	if !ok {
		return
	}

	since, ok := h.since(w, r)
	if !ok {
		return
	}

	batch, err := h.service.StreamUpdates(ctx, key, since)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Клиент ушел, отвечать некому
			h.logger.DebugContext(ctx, "updates request cancelled", slog.String("page", key))
			return
		}
		if errors.Is(err, history.ErrHistoryTruncated) {
			h.logger.InfoContext(ctx, "updates requested past truncated history",
				slog.String("page", key), slog.Int64("since", since))
			h.sendError(w, historyTruncatedMessage, http.StatusGone)
			return
		}
		h.logger.ErrorContext(ctx, "failed to wait for updates", slog.String("page", key), slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, toUpdatesResponse(batch), http.StatusOK)
}

// pageKey извлекает и проверяет ключ страницы из маршрута
func (h *PageHandler) pageKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := mux.Vars(r)[PageVar]
	if err := validation.ValidatePageKey(key); err != nil {
		h.logger.WarnContext(r.Context(), "invalid page key", slog.String("page", key), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return key, true
}

// since разбирает параметр since; отсутствующий параметр означает 0
func (h *PageHandler) since(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, true
	}

	since, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || since < 0 {
		h.sendError(w, "invalid since parameter", http.StatusBadRequest)
		return 0, false
	}
	return since, true
}

func (h *PageHandler) decodeShape(w http.ResponseWriter, r *http.Request) (validation.ShapeInput, bool) {
	var req api.ShapeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode shape request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return validation.ShapeInput{}, false
	}

	return validation.ShapeInput{
		Points:    string(req.P),
		Thickness: string(req.T),
		R:         string(req.R),
		G:         string(req.G),
		B:         string(req.B),
		A:         string(req.A),
	}, true
}

// sendMutationError переводит ошибку мутации в HTTP статус
func (h *PageHandler) sendMutationError(ctx context.Context, w http.ResponseWriter, key string, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidShape):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.DebugContext(ctx, "mutation cancelled while waiting", slog.String("page", key))
		h.sendError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(ctx, "page mutation failed", slog.String("page", key), slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

// sendJSON отправляет JSON ответ
func (h *PageHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *PageHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{
		Error: message,
	}, statusCode)
}

func toAPIShape(s models.Shape) api.Shape {
	points := make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		points[i] = p
	}

	return api.Shape{
		Points:    points,
		ID:        s.ID,
		Thickness: s.Thickness,
		A:         s.A,
		R:         s.R,
		G:         s.G,
		B:         s.B,
	}
}

func toAPIShapes(shapes []models.Shape) []api.Shape {
	out := make([]api.Shape, len(shapes))
	for i := range shapes {
		out[i] = toAPIShape(shapes[i])
	}
	return out
}

func toShapeResponse(res pagestore.Result) api.ShapeResponse {
	return api.ShapeResponse{
		Status: res.Status.String(),
		Shape:  toAPIShape(res.Shape),
	}
}

func toUpdatesResponse(batch history.Batch) api.UpdatesResponse {
	events := make([]api.Event, len(batch.Events))
	for i, e := range batch.Events {
		events[i] = api.Event{
			Type:  string(e.Type),
			Shape: toAPIShape(e.Shape),
			Time:  e.Time,
		}
	}

	return api.UpdatesResponse{
		Events:    events,
		Watermark: batch.Watermark,
	}
}
