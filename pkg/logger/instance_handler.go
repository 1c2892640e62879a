package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// InstanceHandler wraps an slog.Handler and additionally copies any record
// carrying an "instance" attribute to a per-instance log file, so `ciel
// exec`/`start` activity for one instance can be tailed independently of
// the process-wide log stream.
type InstanceHandler struct {
	slog.Handler
	logPathFunc func(instance string) string
	state       *instanceHandlerState
}

// instanceHandlerState is shared across every handler derived from the
// same root via WithAttrs/WithGroup, so the file cache and its mutex are
// not duplicated per derived handler.
type instanceHandlerState struct {
	mu        sync.Mutex
	fileCache map[string]*os.File
}

// NewInstanceHandler wraps handler so records tagged with "instance" are
// additionally appended to logPathFunc(instance).
func NewInstanceHandler(handler slog.Handler, logPathFunc func(instance string) string) *InstanceHandler {
	return &InstanceHandler{
		Handler:     handler,
		logPathFunc: logPathFunc,
		state:       &instanceHandlerState{fileCache: make(map[string]*os.File)},
	}
}

func (h *InstanceHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}

	var instance string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "instance" {
			instance = a.Value.String()
			return false
		}
		return true
	})
	if instance != "" {
		h.writeToInstanceLog(instance, r)
	}
	return nil
}

func (h *InstanceHandler) writeToInstanceLog(instance string, r slog.Record) {
	path := h.logPathFunc(instance)
	if path == "" {
		return
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	f, ok := h.state.fileCache[instance]
	if !ok {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		h.state.fileCache[instance] = f
	}

	line := slog.NewJSONHandler(f, nil)
	_ = line.Handle(context.Background(), r)
}

func (h *InstanceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &InstanceHandler{Handler: h.Handler.WithAttrs(attrs), logPathFunc: h.logPathFunc, state: h.state}
}

func (h *InstanceHandler) WithGroup(name string) slog.Handler {
	return &InstanceHandler{Handler: h.Handler.WithGroup(name), logPathFunc: h.logPathFunc, state: h.state}
}
