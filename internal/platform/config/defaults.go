package config

// Defaults returns the configuration the server runs with when no value is
// supplied. The spectrogram and model sections default to the exact constants
// the shipped weights were trained with; SelfCheck refuses anything else.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "",
		},
		Storage: StorageConfig{
			DatabasePath: "data/recordings.db",
			AudioDir:     "recorded_audio",
		},
		Model: ModelConfig{
			Path:      "models/hypernasality_resnet18.onnx",
			InputSize: 224,
			Mean:      [3]float32{0.485, 0.456, 0.406},
			Std:       [3]float32{0.229, 0.224, 0.225},
		},
		Spectrogram: SpectrogramConfig{
			SampleRate:      16000,
			NFFT:            400,
			HopLength:       160,
			NMels:           128,
			FMin:            50,
			FMax:            8000,
			DurationSeconds: 3,
			MinDB:           -80,
			MaxDB:           0,
		},
	}
}
