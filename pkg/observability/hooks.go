package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/act/pkg/domain"
)

// Combine returns hooks that call every non-nil callback of each set in order.
func Combine(sets ...domain.HistoryHooks) domain.HistoryHooks {
	var commit, undo, redo []func(*domain.HistoryEvent)
	for _, h := range sets {
		if h.OnCommit != nil {
			commit = append(commit, h.OnCommit)
		}
		if h.OnUndo != nil {
			undo = append(undo, h.OnUndo)
		}
		if h.OnRedo != nil {
			redo = append(redo, h.OnRedo)
		}
	}
	return domain.HistoryHooks{
		OnCommit: fanout(commit),
		OnUndo:   fanout(undo),
		OnRedo:   fanout(redo),
	}
}

func fanout(fns []func(*domain.HistoryEvent)) func(*domain.HistoryEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(e *domain.HistoryEvent) {
		for _, fn := range fns {
			fn(e)
		}
	}
}

// LogHooks logs every history event at Info, and at Warn when nodes failed.
func LogHooks(logger *slog.Logger) domain.HistoryHooks {
	log := func(e *domain.HistoryEvent) {
		level := slog.LevelInfo
		if e.Failed > 0 {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "history_"+string(e.Type),
			"model", e.ModelName,
			"undo", e.UndoCount,
			"redo", e.RedoCount,
			"failed", e.Failed,
		)
	}
	return domain.HistoryHooks{OnCommit: log, OnUndo: log, OnRedo: log}
}
