package store

// PlayerRecord is the durable per-name counter set. The session layer keeps
// plays == wins + loses + draws; nothing recomputes it from history.
// "loses" is the historical wire and column spelling.
type PlayerRecord struct {
	Name  string `json:"name"`
	Wins  int    `json:"wins"`
	Loses int    `json:"loses"`
	Draws int    `json:"draws"`
	Plays int    `json:"plays"`
}
