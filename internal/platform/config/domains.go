package config

import "time"

// PhabricatorConfig holds Conduit API settings.
type PhabricatorConfig struct {
	BaseURL     string        `env:"PHAB_BASE_URL" envDefault:"https://phabricator.wikimedia.org"`
	APIToken    string        `env:"PHAB_API_TOKEN"`
	UserMethod  string        `env:"PHAB_USER_METHOD" envDefault:"user.mediawikiquery"`
	Timeout     time.Duration `env:"PHAB_TIMEOUT" envDefault:"30s"`
	RPS         float64       `env:"PHAB_RPS" envDefault:"0"`
	Concurrency int           `env:"PHAB_CONCURRENCY" envDefault:"1"`
	CursorMode  string        `env:"PHAB_CURSOR_MODE" envDefault:"truthy"`
}

// GerritConfig holds Gerrit REST API settings.
type GerritConfig struct {
	BaseURL  string        `env:"GERRIT_BASE_URL" envDefault:"https://gerrit.wikimedia.org/r"`
	Timeout  time.Duration `env:"GERRIT_TIMEOUT" envDefault:"30s"`
	PageSize int           `env:"GERRIT_PAGE_SIZE" envDefault:"500"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Timezone        string `env:"REPORT_TIMEZONE" envDefault:"Local"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
	// NoColor disables colour when set to any non-empty value (no-color.org).
	NoColor string `env:"NO_COLOR"`
}
