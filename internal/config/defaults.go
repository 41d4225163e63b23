package config

// DefaultAPIBind is the address the daemon HTTP API listens on unless
// configured otherwise.
const DefaultAPIBind = "127.0.0.1:7487"

const (
	defaultLibraryDir       = "~/videos/storyreel"
	defaultStagingDir       = "~/.local/share/storyreel/staging"
	defaultLogDir           = "~/.local/share/storyreel/logs"
	defaultUploadsDir       = "~/.local/share/storyreel/uploads"
	defaultQueueDBPath      = "~/.local/share/storyreel/queue.db"
	defaultLogRetentionDays = 60
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"

	defaultQueuePollInterval       = 5
	defaultHeartbeatInterval       = 15
	defaultStaleProcessingTimeout  = 120
	defaultNotifyRequestTimeout    = 10
	defaultLLMBaseURL              = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                = "google/gemini-3-flash-preview"
	defaultLLMReferer              = "https://github.com/storyreel/storyreel"
	defaultLLMTitle                = "Storyreel"
	defaultLLMTimeoutSeconds       = 120
	defaultTTSBinary               = "edge-tts"
	defaultTTSVoice                = "en-US-GuyNeural"
	defaultTTSFormat               = "mp3"
	defaultVideoWidth              = 1280
	defaultVideoHeight             = 720
	defaultVideoFPS                = 24
	defaultStepSeconds             = 2.0
	defaultMusicVolume             = 0.1
	defaultRingBase                = 0.15
	defaultRingStep                = 0.12
	defaultRingCap                 = 0.35
	defaultYouTubePrivacy          = "private"
	defaultYouTubeCategoryID       = "22"
	defaultYouTubeClientSecrets    = "~/.config/storyreel/client_secrets.json"
	defaultYouTubeTokenFile        = "~/.config/storyreel/youtube_token.json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			UploadsDir: defaultUploadsDir,
		},
		Queue: Queue{
			DBPath:                        defaultQueueDBPath,
			PollIntervalSeconds:           defaultQueuePollInterval,
			HeartbeatIntervalSeconds:      defaultHeartbeatInterval,
			StaleProcessingTimeoutSeconds: defaultStaleProcessingTimeout,
		},
		API: API{
			Bind: DefaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			Binary: defaultTTSBinary,
			Voice:  defaultTTSVoice,
			Format: defaultTTSFormat,
		},
		Video: Video{
			Width:       defaultVideoWidth,
			Height:      defaultVideoHeight,
			FPS:         defaultVideoFPS,
			StepSeconds: defaultStepSeconds,
			MusicVolume: defaultMusicVolume,
		},
		Engine: Engine{
			RingBase:   defaultRingBase,
			RingStep:   defaultRingStep,
			RingCap:    defaultRingCap,
			Continuity: true,
		},
		YouTube: YouTube{
			ClientSecretsFile: defaultYouTubeClientSecrets,
			TokenFile:         defaultYouTubeTokenFile,
			PrivacyStatus:     defaultYouTubePrivacy,
			CategoryID:        defaultYouTubeCategoryID,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
