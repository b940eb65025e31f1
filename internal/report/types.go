package report

// Report is the subset of a Lighthouse result document that is uploaded.
// Older and newer Lighthouse layouts are both accepted; see the accessor methods.
type Report struct {
	RequestedURL      string              `json:"requestedUrl"`
	FinalURL          string              `json:"finalUrl,omitempty"`
	FinalDisplayedURL string              `json:"finalDisplayedUrl,omitempty"`
	FetchTime         string              `json:"fetchTime,omitempty"`
	UserAgent         string              `json:"userAgent,omitempty"`
	LighthouseVersion string              `json:"lighthouseVersion,omitempty"`
	GatherMode        string              `json:"gatherMode,omitempty"`
	BenchmarkIndex    *float64            `json:"benchmarkIndex,omitempty"`
	Environment       *Environment        `json:"environment,omitempty"`
	ConfigSettings    ConfigSettings      `json:"configSettings"`
	Summary           map[string]any      `json:"summary,omitempty"`
	Categories        map[string]Category `json:"categories,omitempty"`
	Audits            map[string]Audit    `json:"audits"`
}

// Environment describes the machine the audit ran on (Lighthouse 6+)
type Environment struct {
	NetworkUserAgent string   `json:"networkUserAgent,omitempty"`
	HostUserAgent    string   `json:"hostUserAgent,omitempty"`
	BenchmarkIndex   *float64 `json:"benchmarkIndex,omitempty"`
}

// ConfigSettings holds the emulation settings used for the run
type ConfigSettings struct {
	FormFactor       string          `json:"formFactor,omitempty"`
	ThrottlingMethod string          `json:"throttlingMethod,omitempty"`
	ScreenEmulation  ScreenEmulation `json:"screenEmulation"`
}

// ScreenEmulation holds the emulated viewport
type ScreenEmulation struct {
	Width             *float64 `json:"width,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	DeviceScaleFactor *float64 `json:"deviceScaleFactor,omitempty"`
}

// Category is one scored report category (performance, accessibility, ...)
type Category struct {
	ID    string   `json:"id,omitempty"`
	Title string   `json:"title,omitempty"`
	Score *float64 `json:"score"`
}

// Audit is one check result. Score and NumericValue are null or absent for some display modes.
type Audit struct {
	ScoreDisplayMode string   `json:"scoreDisplayMode"`
	Score            *float64 `json:"score"`
	NumericValue     *float64 `json:"numericValue,omitempty"`
}

// Display modes that are flattened into row fields
const (
	DisplayModeBinary  = "binary"
	DisplayModeNumeric = "numeric"
)

// EffectiveFinalURL returns finalUrl, falling back to finalDisplayedUrl (Lighthouse 10+)
func (r *Report) EffectiveFinalURL() string {
	if r.FinalURL != "" {
		return r.FinalURL
	}
	return r.FinalDisplayedURL
}

// EffectiveBenchmarkIndex returns the top-level benchmarkIndex, falling back to environment.benchmarkIndex
func (r *Report) EffectiveBenchmarkIndex() *float64 {
	if r.BenchmarkIndex != nil {
		return r.BenchmarkIndex
	}
	if r.Environment != nil {
		return r.Environment.BenchmarkIndex
	}
	return nil
}
