package cache

import "strings"

// Keyer derives cache keys. Implementations must be deterministic and
// include every input that changes the cached value.
type Keyer interface {
	// DocumentKey identifies a parsed edge document by source and content hash.
	DocumentKey(source, contentHash string) string

	// ResultKey identifies the rendered artifacts of an edge set.
	ResultKey(edgesHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds everything besides the edges that shapes a result.
type ResultKeyOpts struct {
	// ConfigHash is the hash of the normalized bundling config.
	ConfigHash  string   `json:"config"`
	Formats     []string `json:"formats"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Margin      float64  `json:"margin,omitempty"`
	Background  string   `json:"background,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"stroke_width,omitempty"`
	Opacity     float64  `json:"opacity,omitempty"`
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey returns "doc:<source>:<hash>".
func (DefaultKeyer) DocumentKey(source, contentHash string) string {
	return "doc:" + strings.ToLower(source) + ":" + contentHash
}

// ResultKey returns "result:<sha256>".
func (DefaultKeyer) ResultKey(edgesHash string, opts ResultKeyOpts) string {
	return hashKey("result", edgesHash, opts)
}
