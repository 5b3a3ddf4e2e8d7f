package entity

// CrawlStats holds the counters of a single crawl run.
type CrawlStats struct {
	New       int `json:"new"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// Add accumulates another run's counters.
func (s *CrawlStats) Add(o CrawlStats) {
	s.New += o.New
	s.Duplicate += o.Duplicate
	s.Failed += o.Failed
	s.Total += o.Total
}
