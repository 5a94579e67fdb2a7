package api

// SearchResponse is the body of a successful GET /search
type SearchResponse struct {
	FilePath string `json:"filepath"`
}

// DomainRecord is one processed domain as returned by GET /list
type DomainRecord struct {
	Domain     string   `json:"domain" yaml:"domain"`
	TxtRecords []string `json:"txtRecords" yaml:"txt_records"`
	FileName   string   `json:"fileName,omitempty" yaml:"file_name,omitempty"`
}
