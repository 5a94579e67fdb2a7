package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# domainslab configuration
version: "1.0"

api:
  # Domains Lab backend root. DOMAINS_LAB_API or VITE_DOMAINS_LAB_API
  # override this value.
  base_url: "http://localhost:8080"
  # 0 waits indefinitely; uploads of large lists can take a while.
  timeout: 0s
  user_agent: "domainslab"

upload:
  allowed_extensions:
    - ".txt"
    - ".csv"

download:
  # Result files are saved here under the name the server gave them.
  output_dir: "."

output:
  default_format: "text" # text|json|csv
  color_mode: "auto"     # auto|always|never
  theme: "default"       # default|high-contrast|minimal
  verbose: false

logging:
  # Used while the terminal UI is running. Leave empty to log to stderr.
  file: "~/.cache/domainslab/domainslab.log"
  max_size_mb: 10
  max_backups: 3
  max_age_days: 14
  compress: false

watch:
  directory: "./inbox"
  # Searched after every processed upload when set.
  keyword: ""
  auto_download: false
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
api:
  base_url: "http://localhost:8080"
download:
  output_dir: "."
`
}
