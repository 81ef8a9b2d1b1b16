package config

type AnnouncerConfig struct {
	Endpoints           []string `mapstructure:"endpoints"`
	Host                string   `mapstructure:"host"`
	Key                 string   `mapstructure:"key"`
	BatchSize           int      `mapstructure:"batch_size"`
	MaxBatchesPerSecond float32  `mapstructure:"max_batches_per_second"`
}
