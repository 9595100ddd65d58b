package config

const (
	defaultLibraryDir            = "~/library"
	defaultLogDir                = "~/.local/share/mediaorg/logs"
	defaultActionLogDir          = "~/.local/share/mediaorg/actionlogs"
	defaultHistoryDB             = "~/.local/share/mediaorg/history.db"
	defaultMoviesDir             = "movies"
	defaultTVDir                 = "tv"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultExactToleranceSeconds = 60
	defaultCloseToleranceSeconds = 300
	defaultNameWeight            = 0.7
	defaultDurationWeight        = 0.3
	defaultUnmatchedFloor        = 20.0
	defaultProbeWorkers          = 4
	defaultOnFailure             = "rollback"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:   defaultLibraryDir,
			LogDir:       defaultLogDir,
			ActionLogDir: defaultActionLogDir,
			HistoryDB:    defaultHistoryDB,
		},
		Library: Library{
			MoviesDir:         defaultMoviesDir,
			TVDir:             defaultTVDir,
			OverwriteExisting: false,
		},
		Matching: Matching{
			ExactToleranceSeconds: defaultExactToleranceSeconds,
			CloseToleranceSeconds: defaultCloseToleranceSeconds,
			NameWeight:            defaultNameWeight,
			DurationWeight:        defaultDurationWeight,
			UnmatchedFloor:        defaultUnmatchedFloor,
			ProbeWorkers:          defaultProbeWorkers,
		},
		Execution: Execution{
			OnFailure:         defaultOnFailure,
			PreserveOriginals: false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
