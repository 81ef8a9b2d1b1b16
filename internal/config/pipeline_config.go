package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type PipelineConfig struct {
	AIKey                      string  `mapstructure:"ai_key"`
	AiModel                    string  `mapstructure:"ai_model"`
	AiMaxRequestsPerMinute     float32 `mapstructure:"ai_max_requests_per_minute"`
	AiMaxRequestsPerDay        float32 `mapstructure:"ai_max_requests_per_day"`
	AiCostPerCallUSD           float64 `mapstructure:"ai_cost_per_call_usd"`
	ClassifyBatchSize          int     `mapstructure:"classify_batch_size"`
	ClassifyConcurrency        int     `mapstructure:"classify_concurrency"`
	SourceMaxRequestsPerSecond float32 `mapstructure:"source_max_requests_per_second"`
	MetricsAddr                string  `mapstructure:"metrics_addr"`
	RunSchedule                string  `mapstructure:"run_schedule"`
}

func (config PipelineConfig) validate() error {

	var missingFields []string

	if config.AIKey == "" {
		missingFields = append(missingFields, "ai_key")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	return nil
}

func (config PipelineConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("pipeline.ai_key", "AI_KEY"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("pipeline.ai_model", "AI_MODEL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
