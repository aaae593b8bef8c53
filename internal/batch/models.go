package batch

// Row is one scanned image in the export
type Row struct {
	File        string `json:"file" parquet:"file"`
	Kind        string `json:"kind" parquet:"kind"`
	Status      string `json:"status" parquet:"status"`
	Score       *int32 `json:"score,omitempty" parquet:"score"`
	Product     string `json:"product,omitempty" parquet:"product"`
	ChecksFound int32  `json:"checks_found" parquet:"checks_found"`
	ChecksTotal int32  `json:"checks_total" parquet:"checks_total"`
	Message     string `json:"message,omitempty" parquet:"message"`
	Error       string `json:"error,omitempty" parquet:"error"`
	DurationMS  int64  `json:"duration_ms" parquet:"duration_ms"`
}

// Failed reports whether no result was obtained for the image
func (r Row) Failed() bool {
	return r.Error != ""
}

// SummaryConfig records how a batch was run
type SummaryConfig struct {
	Server    string `yaml:"server"`
	Dir       string `yaml:"dir"`
	Output    string `yaml:"output"`
	Timestamp string `yaml:"timestamp"`
}

// Summary is written next to the Parquet export
type Summary struct {
	Config      SummaryConfig  `yaml:"config"`
	Total       int            `yaml:"total"`
	Succeeded   int            `yaml:"succeeded"`
	Failed      int            `yaml:"failed"`
	ByStatus    map[string]int `yaml:"by_status"`
	ByKind      map[string]int `yaml:"by_kind"`
	ScoredCount int            `yaml:"scored_count"`
	MeanScore   float64        `yaml:"mean_score"`
}
