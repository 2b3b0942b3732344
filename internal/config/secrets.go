package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// BingX
	out.BingX = cfg.BingX
	redact(&out.BingX.ApiKey)
	redact(&out.BingX.ApiSecret)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
