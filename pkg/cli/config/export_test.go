package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewBackendForTest(baseURL string, timeout time.Duration) *Backend {
	return &Backend{baseURL: baseURL, timeout: timeout}
}

func NewRepositoryForTest(backend, projectID, postgresDSN string) *Repository {
	return &Repository{backend: backend, projectID: projectID, postgresDSN: postgresDSN}
}

func NewSiteForTest(id, configPath string) *Site {
	return &Site{id: id, configPath: configPath}
}

func NewSlackForTest(botToken, channel string) *Slack {
	return &Slack{botToken: botToken, channel: channel}
}
