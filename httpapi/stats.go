package httpapi

import "github.com/kollider-hedge/hedged/ledger"

// statsView is the wire shape of GET /stats per spec.md §6.
type statsView struct {
	ChannelsSats   uint64  `json:"channels_sats"`
	ChannelsUsd    float64 `json:"channels_usd"`
	PositionSats   uint64  `json:"position_sats"`
	PositionUsd    uint64  `json:"position_usd"`
	AccountBalance float64 `json:"account_balance"`
}

// computeStats derives the summary statistics from the current ledger.
// Caller must hold s.Mu.
func computeStats(s *ledger.State) (statsView, error) {
	capacity := s.HedgeCapacity()
	if capacity < 0 {
		capacity = 0
	}

	avgPrice, err := s.HedgeAvgPrice()
	if err != nil {
		return statsView{}, err
	}

	var channelsUsd float64
	if avgPrice != 0 {
		channelsUsd = float64(capacity) / avgPrice
	}

	var balance float64
	if s.Balance != nil {
		balance = *s.Balance
	}

	return statsView{
		ChannelsSats:   uint64(capacity),
		ChannelsUsd:    channelsUsd,
		PositionSats:   s.PositionVolume(),
		PositionUsd:    s.PositionQuantity(),
		AccountBalance: balance,
	}, nil
}
