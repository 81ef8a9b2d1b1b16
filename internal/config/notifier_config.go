package config

import "github.com/spf13/viper"

type NotifierConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

// Enabled reports whether alerts can be delivered; an unset notifier is
// valid and simply logs instead.
func (config NotifierConfig) Enabled() bool {
	return config.TelegramToken != "" && config.TelegramChatID != 0
}

func (config NotifierConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("notifier.telegram_token", "TELEGRAM_TOKEN")
	if err != nil {
		return err
	}

	return viper.BindEnv("notifier.telegram_chat_id", "TELEGRAM_CHAT_ID")
}
