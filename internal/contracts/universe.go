package contracts

// UniverseEntry is one candidate instrument: an exchange-qualified ticker
// in Yahoo format plus an optional display name.
type UniverseEntry struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
}
