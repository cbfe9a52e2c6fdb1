package config

const (
	defaultJobsDir   = "~/.local/share/framecast/jobs"
	defaultPublicDir = "~/.local/share/framecast/public"
	defaultLogDir    = "~/.local/share/framecast/logs"
	defaultBind      = "127.0.0.1:8640"

	defaultEncoderBinary = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultFontFile      = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	defaultPreset        = "veryfast"
	defaultCRF           = 23
	defaultFrameRate     = 25
	defaultWidth         = 1080
	defaultHeight        = 1920

	defaultWorkers            = 4
	defaultQueueCapacity      = 64
	defaultJobTimeout         = 1800
	defaultDownloadTimeout    = 60
	defaultRenderErrorExcerpt = 300
	defaultMixErrorExcerpt    = 400

	defaultStoreBackend = "file"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobsDir:   defaultJobsDir,
			PublicDir: defaultPublicDir,
			LogDir:    defaultLogDir,
			Bind:      defaultBind,
		},
		Encoder: Encoder{
			Binary:         defaultEncoderBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			FontFile:       defaultFontFile,
			Preset:         defaultPreset,
			CRF:            defaultCRF,
			FrameRate:      defaultFrameRate,
			Width:          defaultWidth,
			Height:         defaultHeight,
			ValidateOutput: true,
		},
		Pipeline: Pipeline{
			Workers:            defaultWorkers,
			QueueCapacity:      defaultQueueCapacity,
			JobTimeout:         defaultJobTimeout,
			DownloadTimeout:    defaultDownloadTimeout,
			RenderErrorExcerpt: defaultRenderErrorExcerpt,
			MixErrorExcerpt:    defaultMixErrorExcerpt,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
