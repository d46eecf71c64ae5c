package compositor

import (
	"log/slog"

	"github.com/wlhost/compositor/bus"
	"github.com/wlhost/compositor/wlnative"
)

// output is this core's record of one headless output, one per headless
// output the backend creates.
type output struct {
	handle wlnative.OutputHandle
	ready  bool
}

// outputManager owns the new_output lifecycle: bring each output up
// through the three-step init→layout→scene-output pipeline; on every
// frame, commit the scene and reschedule; on destroy, forget the record.
type outputManager struct {
	backend wlnative.Backend
	bus     *bus.Bus
	logger  *slog.Logger

	outs map[wlnative.OutputHandle]*output
}

func newOutputManager(backend wlnative.Backend, b *bus.Bus, logger *slog.Logger) *outputManager {
	return &outputManager{
		backend: backend,
		bus:     b,
		logger:  logger,
		outs:    make(map[wlnative.OutputHandle]*output),
	}
}

func (m *outputManager) onNewOutput(h wlnative.OutputHandle) {
	if err := m.backend.InitOutputRendering(h); err != nil {
		m.logger.Error("init output rendering", "err", err)
		return
	}
	if err := m.backend.CreateSceneOutput(h); err != nil {
		m.logger.Error("create scene output", "err", err)
		return
	}
	m.outs[h] = &output{handle: h, ready: true}
	m.backend.ScheduleNextFrame(h)
}

func (m *outputManager) onFrame(h wlnative.OutputHandle) {
	o, ok := m.outs[h]
	if !ok || !o.ready {
		return
	}
	if err := m.backend.CommitSceneOutput(h); err != nil {
		m.logger.Warn("commit scene output", "err", err)
	}
	m.backend.ScheduleNextFrame(h)
}

func (m *outputManager) onDestroy(h wlnative.OutputHandle) {
	delete(m.outs, h)
}
