package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type SourceType string

const SOURCE_TYPE_API SourceType = "api"
const SOURCE_TYPE_WEB SourceType = "web"

type Config struct {
	HttpPort         int
	StorageType      StorageType
	RedisConfig      RedisStorageConfig
	StepPacingMillis int
	Sources          []SourceConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

// SourceConfig describes one external data source. RateLimit is the maximum
// number of requests per minute the source accepts.
type SourceConfig struct {
	Name           string
	Type           SourceType
	Url            string
	RateLimit      int
	TimeoutSeconds int
}

// DefaultSources lists the registries and data feeds queried during company
// formation. Rate limits mirror what the providers tolerate.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:           "wa_dor",
			Type:           SOURCE_TYPE_WEB,
			Url:            "https://dor.wa.gov/businesses",
			RateLimit:      5,
			TimeoutSeconds: 30,
		},
		{
			Name:           "wa_sos",
			Type:           SOURCE_TYPE_WEB,
			Url:            "https://sos.wa.gov/businesses",
			RateLimit:      5,
			TimeoutSeconds: 30,
		},
		{
			Name:           "uspto",
			Type:           SOURCE_TYPE_API,
			Url:            "https://developer.uspto.gov/api",
			RateLimit:      20,
			TimeoutSeconds: 30,
		},
		{
			Name:           "grants_gov",
			Type:           SOURCE_TYPE_API,
			Url:            "https://www.grants.gov/web/grants/search-grants.html",
			RateLimit:      10,
			TimeoutSeconds: 30,
		},
		{
			Name:           "legal_us",
			Type:           SOURCE_TYPE_WEB,
			Url:            "https://www.usa.gov/business-laws",
			RateLimit:      15,
			TimeoutSeconds: 30,
		},
	}
}
