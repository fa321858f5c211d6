package observability

// Pipeline stages used to tag errors in IncError. They match the stage names
// reported by the orchestrator.
const (
	StageExtraction    = "extraction"
	StageParsing       = "parsing"
	StageAnalysis      = "analysis"
	StageCustomization = "customization"
	StageDocument      = "document"
	StageAutomation    = "automation"
	StageReport        = "report"
	StageStore         = "store"
)
