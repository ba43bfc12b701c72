package app

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/store"
)

const (
	selectionKey = "selected_products_v1"
	messagesKey  = "chat_messages_v1"

	// persistWindow is how many trailing messages survive a restart
	persistWindow = 50
)

// persistSelection writes the selection. Caller holds a.mu.
func (a *App) persistSelection(ctx context.Context) {
	ids := a.selected
	if ids == nil {
		ids = []domain.ProductID{}
	}
	a.write(ctx, selectionKey, ids)
}

// persistMessages writes the conversation tail. Caller holds a.mu.
func (a *App) persistMessages(ctx context.Context) {
	a.write(ctx, messagesKey, a.messages[max(len(a.messages)-persistWindow, 0):])
}

// write stores v as JSON. Failures are logged and otherwise ignored.
func (a *App) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Debug().Err(err).Str("key", key).Msg("failed to encode state")
		return
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		a.logger.Debug().Err(err).Str("key", key).Msg("failed to persist state")
	}
}

// read decodes the JSON stored under key into v. It reports false when the
// key is absent, unreadable or malformed.
func (a *App) read(ctx context.Context, key string, v any) bool {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Debug().Err(err).Str("key", key).Msg("failed to read state")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		a.logger.Debug().Err(err).Str("key", key).Msg("discarding malformed state")
		return false
	}
	return true
}

// RestoreSession replaces the selection and conversation with what was
// persisted. Absent or malformed data restores as empty.
func (a *App) RestoreSession(ctx context.Context) {
	var ids []domain.ProductID
	if !a.read(ctx, selectionKey, &ids) {
		ids = nil
	}

	var messages []domain.Message
	if !a.read(ctx, messagesKey, &messages) {
		messages = nil
	}

	selected := make([]domain.ProductID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(selected, id) {
			selected = append(selected, id)
		}
	}

	a.mu.Lock()
	a.selected = selected
	a.messages = messages
	a.mu.Unlock()

	a.renderProducts()
	a.renderSelection()
	a.renderChat()
}
