package shared

type ServerConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite" validate:"required"`
	Haven  HavenConfig  `mapstructure:"haven" validate:"required"`
	Twilio TwilioConfig `mapstructure:"twilio"`
	Google GoogleConfig `mapstructure:"google"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type HavenConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	OwnerPinHash  string         `mapstructure:"ownerPinHash"`
	Voice         VoiceConfig    `mapstructure:"voice" validate:"required"`
	Alert         AlertConfig    `mapstructure:"alert"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type VoiceConfig struct {
	TriggerPhrase  string `mapstructure:"triggerPhrase" validate:"required"`
	Locale         string `mapstructure:"locale"`
	RestartDelayMs int    `mapstructure:"restartDelayMs" validate:"omitempty,min=100"`
}

type AlertConfig struct {
	SendDelayMs      int    `mapstructure:"sendDelayMs" validate:"omitempty,min=0"`
	LocationEndpoint string `mapstructure:"locationEndpoint"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
	WhatsAppNumber      string `mapstructure:"whatsAppNumber"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket                string      `mapstructure:"bucket" validate:"required_with=EnableDbBackupAndSync"`
	Prefix                string      `mapstructure:"prefix" validate:"required_with=EnableDbBackupAndSync"`
	DbBackupSchedule      string      `mapstructure:"dbBackupSchedule" validate:"required_with=EnableDbBackupAndSync"`
	EnableDbBackupAndSync interface{} `mapstructure:"enableDbBackupAndSync" validate:"omitempty,bool"`
}
