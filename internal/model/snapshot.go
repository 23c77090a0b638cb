package model

// ReserveSnapshot is a ReserveInfo taken at a known chain position.
type ReserveSnapshot struct {
	ChainID     uint64      `json:"chain_id"`
	Pool        string      `json:"pool"`
	BlockNumber uint64      `json:"block_number"`
	Timestamp   uint64      `json:"timestamp"`
	Info        ReserveInfo `json:"info"`
}
