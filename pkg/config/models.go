package config

type Config struct {
	// BaseDirectory is the root under which change directories live.
	BaseDirectory string  `yaml:"base_directory,omitempty"`
	Folders       Folders `yaml:"folders,omitempty"`
	Inputs        Inputs  `yaml:"inputs,omitempty"`
	Device        Device  `yaml:"device,omitempty"`
	Store         Store   `yaml:"store,omitempty"`
	Merge         Merge   `yaml:"merge,omitempty"`
	Diff          Diff    `yaml:"diff,omitempty"`
	Logging       Logging `yaml:"logging,omitempty"`
	Metrics       Metrics `yaml:"metrics,omitempty"`
}

type Folders struct {
	// Output holds snapshots and rendered reports, per change directory.
	Output string `yaml:"output"`
	// ValFiles holds validation input documents, per change directory.
	ValFiles string `yaml:"val_files"`
}

type Inputs struct {
	CommandFile string `yaml:"command_file"`
	IndexFile   string `yaml:"index_file"`
}

type Device struct {
	Username string `yaml:"username"`
}

type Store struct {
	// Backend selects the snapshot store driver: "fs" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the sqlite database location, ignored by the fs backend.
	Path string `yaml:"path,omitempty"`
}

type Merge struct {
	// DedupCommands drops repeat commands contributed by multiple layers,
	// keeping the first occurrence. Off by default: a command listed at two
	// layers is run twice.
	DedupCommands bool `yaml:"dedup_commands"`
}

type Diff struct {
	// SimilarityThreshold is the minimum line similarity ratio for a
	// removed/added pair to be reported as a single changed line.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type Logging struct {
	Format     string            `yaml:"format"`
	Level      string            `yaml:"level"`
	Components map[string]string `yaml:"components,omitempty"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
	// File is the exposition-format dump written into the change output
	// folder after a batch run.
	File string `yaml:"file,omitempty"`
}
