package logger

const (
	Main       = "main"
	Merge      = "merge"
	Diff       = "diff"
	Compliance = "compliance"
	Index      = "index"
	Collect    = "collect"
	Store      = "store"
	Inventory  = "inventory"
	Engine     = "engine"
	Metrics    = "metrics"
)
