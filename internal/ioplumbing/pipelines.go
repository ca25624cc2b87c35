package ioplumbing

import (
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/vanpelt/sareterm/internal/model"
)

const pipelineCacheLimit = 65536

type pipeEnd struct {
	read  *os.File
	write *os.File
}

type pipelineEntry struct {
	meta  model.Pipeline
	pipes []pipeEnd
}

// PipelineManager wires n-1 OS pipes between n process slots, pairwise, and
// exposes write-to-first/read-from-last access over the chain.
type PipelineManager struct {
	mu        sync.RWMutex
	pipelines map[string]*pipelineEntry
}

// NewPipelineManager returns an empty PipelineManager.
func NewPipelineManager() *PipelineManager {
	return &PipelineManager{pipelines: make(map[string]*pipelineEntry)}
}

// CreatePipeline allocates len(processIDs)-1 pipes connecting the given
// process slots in sequence.
func (m *PipelineManager) CreatePipeline(processIDs []int) (string, error) {
	if len(processIDs) < 2 {
		return "", model.InvalidState("ioplumbing.CreatePipeline", "", "a pipeline needs at least two processes")
	}

	pipes := make([]pipeEnd, 0, len(processIDs)-1)
	fds := make([]int, 0, 2*(len(processIDs)-1))
	for i := 0; i < len(processIDs)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			for _, p := range pipes {
				p.read.Close()
				p.write.Close()
			}
			return "", model.IOError("ioplumbing.CreatePipeline", err)
		}
		pipes = append(pipes, pipeEnd{read: r, write: w})
		fds = append(fds, int(r.Fd()), int(w.Fd()))
	}

	id := uuid.New().String()
	entry := &pipelineEntry{
		meta: model.Pipeline{
			ID:         id,
			ProcessIDs: append([]int(nil), processIDs...),
			State:      model.PipelineActive,
			PipeFDs:    fds,
		},
		pipes: pipes,
	}

	m.mu.Lock()
	m.pipelines[id] = entry
	m.mu.Unlock()
	return id, nil
}

// WriteToPipeline writes data to the write end of the first pipe in the
// chain.
func (m *PipelineManager) WriteToPipeline(id string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pipelines[id]
	if !ok {
		return 0, model.NotFound("ioplumbing.WriteToPipeline", id)
	}
	if entry.meta.State != model.PipelineActive {
		return 0, model.InvalidState("ioplumbing.WriteToPipeline", id, "pipeline is not active")
	}
	if len(entry.pipes) == 0 {
		return 0, model.InvalidState("ioplumbing.WriteToPipeline", id, "no write pipe available")
	}

	n, err := entry.pipes[0].write.Write(data)
	if err != nil {
		entry.meta.State = model.PipelineError
		entry.meta.Message = err.Error()
		return n, model.IOError("ioplumbing.WriteToPipeline", err)
	}

	entry.meta.Cached = append(entry.meta.Cached, data...)
	if len(entry.meta.Cached) > pipelineCacheLimit {
		entry.meta.Cached = entry.meta.Cached[len(entry.meta.Cached)-pipelineCacheLimit:]
	}
	return n, nil
}

// ReadFromPipeline reads from the read end of the last pipe in the chain.
func (m *PipelineManager) ReadFromPipeline(id string, buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pipelines[id]
	if !ok {
		return 0, model.NotFound("ioplumbing.ReadFromPipeline", id)
	}
	if entry.meta.State != model.PipelineActive {
		return 0, model.InvalidState("ioplumbing.ReadFromPipeline", id, "pipeline is not active")
	}
	if len(entry.pipes) == 0 {
		return 0, model.InvalidState("ioplumbing.ReadFromPipeline", id, "no read pipe available")
	}

	n, err := entry.pipes[len(entry.pipes)-1].read.Read(buf)
	if err != nil {
		entry.meta.State = model.PipelineError
		entry.meta.Message = err.Error()
		return n, model.IOError("ioplumbing.ReadFromPipeline", err)
	}
	return n, nil
}

// ClosePipeline closes every pipe fd in the chain and removes the pipeline.
func (m *PipelineManager) ClosePipeline(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pipelines[id]
	if !ok {
		return model.NotFound("ioplumbing.ClosePipeline", id)
	}
	for _, p := range entry.pipes {
		p.read.Close()
		p.write.Close()
	}
	entry.meta.State = model.PipelineComplete
	entry.meta.Cached = nil
	delete(m.pipelines, id)
	return nil
}

// ListPipelines returns a copy of every registered pipeline's metadata.
func (m *PipelineManager) ListPipelines() []model.Pipeline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Pipeline, 0, len(m.pipelines))
	for _, entry := range m.pipelines {
		out = append(out, entry.meta)
	}
	return out
}
