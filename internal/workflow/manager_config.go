package workflow

import (
	"storyreel/internal/queue"
	"storyreel/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
// A nil Uploader finishes jobs at assembly.
type StageSet struct {
	Scripter  stage.Handler
	Narrator  stage.Handler
	Animator  stage.Handler
	Assembler stage.Handler
	Uploader  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// ConfigureStages registers the concrete stage handlers the workflow runs.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage

	if set.Scripter != nil {
		stages = append(stages, pipelineStage{
			name:             "scripter",
			handler:          set.Scripter,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusScripting,
			doneStatus:       queue.StatusScripted,
		})
	}
	if set.Narrator != nil {
		stages = append(stages, pipelineStage{
			name:             "narrator",
			handler:          set.Narrator,
			startStatus:      queue.StatusScripted,
			processingStatus: queue.StatusNarrating,
			doneStatus:       queue.StatusNarrated,
		})
	}
	if set.Animator != nil {
		stages = append(stages, pipelineStage{
			name:             "animator",
			handler:          set.Animator,
			startStatus:      queue.StatusNarrated,
			processingStatus: queue.StatusAnimating,
			doneStatus:       queue.StatusAnimated,
		})
	}
	assemblerDone := queue.StatusAssembled
	if set.Uploader == nil {
		assemblerDone = queue.StatusCompleted
	}
	if set.Assembler != nil {
		stages = append(stages, pipelineStage{
			name:             "assembler",
			handler:          set.Assembler,
			startStatus:      queue.StatusAnimated,
			processingStatus: queue.StatusAssembling,
			doneStatus:       assemblerDone,
		})
	}
	if set.Uploader != nil {
		stages = append(stages, pipelineStage{
			name:             "uploader",
			handler:          set.Uploader,
			startStatus:      queue.StatusAssembled,
			processingStatus: queue.StatusUploading,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
