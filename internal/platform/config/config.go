package config

// Config is the root server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Web         WebConfig         `yaml:"web"`
	Storage     StorageConfig     `yaml:"storage"`
	Model       ModelConfig       `yaml:"model"`
	Spectrogram SpectrogramConfig `yaml:"spectrogram"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	AudioDir     string `yaml:"audio_dir"`
}

// ModelConfig describes the frozen classifier and its input contract.
type ModelConfig struct {
	Path      string     `yaml:"path"`
	InputSize int        `yaml:"input_size"`
	Mean      [3]float32 `yaml:"mean"`
	Std       [3]float32 `yaml:"std"`
}

// SpectrogramConfig carries the transform constants the classifier weights
// were trained against. They are versioned together with the weights and
// verified by SelfCheck at startup.
type SpectrogramConfig struct {
	SampleRate      int     `yaml:"sample_rate"`
	NFFT            int     `yaml:"n_fft"`
	HopLength       int     `yaml:"hop_length"`
	NMels           int     `yaml:"n_mels"`
	FMin            float64 `yaml:"f_min"`
	FMax            float64 `yaml:"f_max"`
	DurationSeconds int     `yaml:"duration_seconds"`
	MinDB           float64 `yaml:"min_db"`
	MaxDB           float64 `yaml:"max_db"`
}
