package extractor

// Persona is a declared client identity passed to yt-dlp. YouTube serves
// different stream sets to different player clients, and periodically breaks
// one of them; trying several identities in order is what keeps extraction
// working across those breakages.
type Persona struct {
	// Client is the yt-dlp player_client identifier.
	Client string
	// Description labels the attempt in logs.
	Description string
}

// DefaultPersonas is the fixed attempt order, most-likely-to-succeed first.
// The loop over these is strictly sequential: each attempt costs a full
// network round trip and yt-dlp retries internally, so running personas
// concurrently would multiply upstream load without helping the common case
// where the first one succeeds.
var DefaultPersonas = []Persona{
	{Client: "ios", Description: "primary extraction with ios client"},
	{Client: "android", Description: "fallback with android client"},
	{Client: "web", Description: "final fallback with web client"},
}

// browserUserAgent is sent with every attempt. A realistic mobile browser
// identity; a default Go or yt-dlp user agent gets served decoy assets far
// more often.
const browserUserAgent = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.210 Mobile Safari/537.36"

// extraHeaders accompany the user agent on every attempt.
var extraHeaders = []string{
	"Accept:text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language:en-us,en;q=0.5",
	"DNT:1",
	"Sec-Fetch-Mode:navigate",
}
