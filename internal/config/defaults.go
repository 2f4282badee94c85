package config

const (
	defaultDataDir            = "~/.local/share/storyreel/projects"
	defaultOutputDir          = "~/.local/share/storyreel/output"
	defaultLogDir             = "~/.local/share/storyreel/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultFFmpegBin          = "ffmpeg"
	defaultFFprobeBin         = "ffprobe"
	defaultProviderBaseURL    = "https://api.minimax.io/v1"
	defaultVideoModel         = "MiniMax-Hailuo-02"
	defaultSpeechModel        = "speech-02-hd"
	defaultProviderTimeout    = 120
	defaultProviderPoll       = 10
	defaultProviderMaxWait    = 900
	defaultTransientRetries   = 5
	defaultPlannerBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultPlannerModel       = "openai/gpt-4o-mini"
	defaultPlannerTimeout     = 60
	defaultMaxTargetSeconds   = 120
	defaultDurationTolerance  = 0.5
	defaultArtifactURLExpiry  = 72
	defaultNotifyTimeout      = 10
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// SegmentDurations lists the per-segment durations the provider accepts.
var SegmentDurations = []int{6, 10}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
			FFmpegBin:  defaultFFmpegBin,
			FFprobeBin: defaultFFprobeBin,
		},
		Provider: Provider{
			BaseURL:          defaultProviderBaseURL,
			VideoModel:       defaultVideoModel,
			SpeechModel:      defaultSpeechModel,
			RequestTimeout:   defaultProviderTimeout,
			PollInterval:     defaultProviderPoll,
			MaxWaitSeconds:   defaultProviderMaxWait,
			TransientRetries: defaultTransientRetries,
		},
		Planner: Planner{
			BaseURL:        defaultPlannerBaseURL,
			Model:          defaultPlannerModel,
			TimeoutSeconds: defaultPlannerTimeout,
		},
		Projects: Projects{
			MaxTargetSeconds:  defaultMaxTargetSeconds,
			DurationTolerance: defaultDurationTolerance,
		},
		Artifacts: Artifacts{
			URLExpiryHours: defaultArtifactURLExpiry,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Review:         true,
			Completion:     true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// AllowedSegmentDuration reports whether the provider accepts the duration.
func AllowedSegmentDuration(seconds int) bool {
	for _, allowed := range SegmentDurations {
		if seconds == allowed {
			return true
		}
	}
	return false
}
