package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/inkpage/internal/history"
)

// writeWait время на запись одного сообщения в websocket
const writeWait = 10 * time.Second

// CloseHistoryTruncated код закрытия websocket, когда события после since
// утеряны. Клиенту нужно заново прочитать снимок страницы.
const CloseHistoryTruncated = 4410

// StreamHandler отдает обновления страницы через websocket.
// Каждое разрешившееся ожидание (события или heartbeat) отправляется
// отдельным сообщением api.UpdatesResponse.
type StreamHandler struct {
	logger   *slog.Logger
	pages    *PageHandler
	upgrader websocket.Upgrader
}

// NewStreamHandler создает новый handler для websocket подписки
func NewStreamHandler(logger *slog.Logger, pages *PageHandler) *StreamHandler {
	return &StreamHandler{
		logger: logger,
		pages:  pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Stream обрабатывает GET /api/v1/pages/{page}/stream?since=N
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pages.pageKey(w, r)
	if !ok {
		return
	}

	since, ok := h.pages.since(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.WarnContext(r.Context(), "failed to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Входящие сообщения не нужны, читаем только чтобы заметить закрытие
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.DebugContext(ctx, "stream opened", slog.String("page", key), slog.Int64("since", since))

	for {
		batch, err := h.pages.service.StreamUpdates(ctx, key, since)
		if errors.Is(err, history.ErrHistoryTruncated) {
			msg := websocket.FormatCloseMessage(CloseHistoryTruncated, historyTruncatedMessage)
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			break
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				h.logger.ErrorContext(ctx, "stream wait failed", slog.String("page", key), slog.Any("error", err))
			}
			break
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(toUpdatesResponse(batch)); err != nil {
			h.logger.DebugContext(ctx, "stream write failed", slog.String("page", key), slog.Any("error", err))
			break
		}
		since = batch.Watermark
	}

	h.logger.DebugContext(ctx, "stream closed", slog.String("page", key))
}
