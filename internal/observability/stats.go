package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	Extractions      uint64            `json:"extractions"`
	OracleCalls      uint64            `json:"oracle_calls"`
	Automations      uint64            `json:"automations"`
	Reports          uint64            `json:"reports"`
	Applications     uint64            `json:"applications"`
	ErrorsTotal      uint64            `json:"errors_total"`
	PipelineSecsAvg  float64           `json:"pipeline_seconds_avg"`
	OracleCallsByUse map[string]uint64 `json:"oracle_calls_by_use,omitempty"`
	ErrorsByKind     map[string]uint64 `json:"errors_by_kind,omitempty"`
	ErrorsByStage    map[string]uint64 `json:"errors_by_stage,omitempty"`
}

var (
	extractions  uint64
	oracleCalls  uint64
	automations  uint64
	reports      uint64
	applications uint64
	errorsTotal  uint64

	pipelineCount uint64
	pipelineNanos uint64

	statsMu          sync.Mutex
	oracleCallsByUse = map[string]uint64{}
	errorsByKind     = map[string]uint64{}
	errorsByStage    = map[string]uint64{}
)

func IncExtraction(_ string) {
	atomic.AddUint64(&extractions, 1)
}

func IncOracleCall(use string) {
	atomic.AddUint64(&oracleCalls, 1)
	if use == "" {
		use = "unknown"
	}
	statsMu.Lock()
	oracleCallsByUse[use]++
	statsMu.Unlock()
}

func IncAutomation(_ string) {
	atomic.AddUint64(&automations, 1)
}

func IncReport() {
	atomic.AddUint64(&reports, 1)
}

func IncApplication() {
	atomic.AddUint64(&applications, 1)
}

func ObservePipelineDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&pipelineCount, 1)
	atomic.AddUint64(&pipelineNanos, uint64(seconds*1e9))
}

func IncError(kind, stage string) {
	if kind == "" {
		kind = "unknown"
	}
	if stage == "" {
		stage = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByKind[kind]++
	errorsByStage[stage]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	useCopy := copyMap(oracleCallsByUse)
	kindCopy := copyMap(errorsByKind)
	stageCopy := copyMap(errorsByStage)
	statsMu.Unlock()

	count := atomic.LoadUint64(&pipelineCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&pipelineNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		Extractions:      atomic.LoadUint64(&extractions),
		OracleCalls:      atomic.LoadUint64(&oracleCalls),
		Automations:      atomic.LoadUint64(&automations),
		Reports:          atomic.LoadUint64(&reports),
		Applications:     atomic.LoadUint64(&applications),
		ErrorsTotal:      atomic.LoadUint64(&errorsTotal),
		PipelineSecsAvg:  avg,
		OracleCallsByUse: useCopy,
		ErrorsByKind:     kindCopy,
		ErrorsByStage:    stageCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
