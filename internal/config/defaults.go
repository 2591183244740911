package config

// Output formats understood by the result writer
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// DefaultWindowSizes provides common desktop viewport sizes. A session
// picks one at random so layouts are exercised at several widths.
func DefaultWindowSizes() []WindowSize {
	return []WindowSize{
		{Width: 1920, Height: 1080},
		{Width: 1366, Height: 768},
		{Width: 1536, Height: 864},
		{Width: 1440, Height: 900},
	}
}
