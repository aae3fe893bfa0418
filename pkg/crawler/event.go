package crawler

import "github.com/pocket-wallet/pocketd/pkg/explorer"

const (
	QuitSignal EventType = iota
	AddressActivity
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case AddressActivity:
		return "AddressActivity"
	default:
		return "Unknown"
	}
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

// AddressEvent carries the unspent set observed for a watched address.
type AddressEvent struct {
	EventType EventType
	Address   string
	Utxos     []explorer.Utxo
}

func (a AddressEvent) Type() EventType {
	return a.EventType
}
