package chunk

// Chunker normalizes and frames report text with a validated Config.
type Chunker struct {
	cfg Config
}

func New(cfg Config) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

func (c *Chunker) Config() Config {
	return c.cfg
}

func (c *Chunker) Normalize(text string) string {
	return Normalize(text, c.cfg.SectionMarkers)
}

func (c *Chunker) Split(text string) []Segment {
	return Frame(c.Normalize(text), c.cfg)
}
