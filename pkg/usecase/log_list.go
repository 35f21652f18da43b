package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/utils/busy"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
)

// LogList is the state of the log list view. It is safe for concurrent use.
type LogList struct {
	mu     sync.RWMutex
	phase  Phase
	err    string
	search string
	logs   []*model.Log
}

// LogListView is a point in time copy of LogList for rendering.
type LogListView struct {
	Phase   Phase
	Error   string
	Search  string
	Total   int
	Visible []*model.Log
}

func (l *LogList) SetSearch(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.search = term
}

// View returns the current state with the search filter applied.
func (l *LogList) View() LogListView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LogListView{
		Phase:   l.phase,
		Error:   l.err,
		Search:  l.search,
		Total:   len(l.logs),
		Visible: FilterLogs(l.logs, l.search),
	}
}

func (l *LogList) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = slices.DeleteFunc(slices.Clone(l.logs), func(x *model.Log) bool {
		return x.ID == id
	})
}

// FilterLogs keeps the logs whose title or description contains term, ignoring case.
// The input order is preserved and the input slice is not modified.
func FilterLogs(logs []*model.Log, term string) []*model.Log {
	out := make([]*model.Log, 0, len(logs))
	for _, l := range logs {
		if l.Matches(term) {
			out = append(out, l)
		}
	}
	return out
}

type LogListUseCase struct {
	logs     interfaces.LogClient
	inflight *busy.Set
}

func NewLogListUseCase(logs interfaces.LogClient, inflight *busy.Set) *LogListUseCase {
	return &LogListUseCase{logs: logs, inflight: inflight}
}

// Load fetches all logs. A failure is recorded in the returned state, never returned.
func (uc *LogListUseCase) Load(ctx context.Context) *LogList {
	list := &LogList{}
	uc.Reload(ctx, list)
	return list
}

// Reload re-fetches into an existing list, keeping its search term.
func (uc *LogListUseCase) Reload(ctx context.Context, list *LogList) {
	logs, err := uc.logs.ListLogs(ctx)

	list.mu.Lock()
	defer list.mu.Unlock()
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load logs")
		list.phase = PhaseFailed
		list.err = MsgLoadLogsFailed
		list.logs = nil
		return
	}
	list.phase = PhaseLoaded
	list.err = ""
	list.logs = logs
}

// Delete removes the log with id from the backend and, on success, from list
// without re-fetching. Nothing is sent unless confirmed is true. list may be nil.
func (uc *LogListUseCase) Delete(ctx context.Context, list *LogList, id string, confirmed bool) error {
	if err := deleteLog(ctx, uc.logs, uc.inflight, id, confirmed); err != nil {
		return err
	}
	if list != nil {
		list.remove(id)
	}
	return nil
}

// IsDeleting reports whether a delete of the log with id is in flight.
func (uc *LogListUseCase) IsDeleting(id string) bool {
	return uc.inflight.Has(deleteLogKey(id))
}

func deleteLogKey(id string) string {
	return "delete-log:" + id
}

func deleteLog(ctx context.Context, logs interfaces.LogClient, inflight *busy.Set, id string, confirmed bool) error {
	if !confirmed {
		return goerr.Wrap(ErrNotConfirmed, "log delete not confirmed", goerr.V(LogIDKey, id))
	}

	key := deleteLogKey(id)
	if !inflight.TryAcquire(key) {
		return inProgress(key)
	}
	defer inflight.Release(key)

	if err := logs.DeleteLog(ctx, id); err != nil {
		return newAlert(MsgDeleteLogFailed, errutil.Handle(ctx, err, "failed to delete log"))
	}
	return nil
}

// Export fetches every log for a full data download.
func (uc *LogListUseCase) Export(ctx context.Context) ([]*model.Log, error) {
	logs, err := uc.logs.ListLogs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to export logs")
	}
	return logs, nil
}
