package market

import (
	"encoding/binary"
	"time"

	"github.com/venuemint/venuemint/pkg/crypto"
	"github.com/venuemint/venuemint/pkg/types"
)

// Receipt records a completed purchase.
type Receipt struct {
	ID      types.Hash      `json:"id"`
	Buyer   types.Address   `json:"buyer"`
	Event   string          `json:"event"`
	Tickets []types.TokenID `json:"tickets"`
	Total   uint64          `json:"total"`
	Issued  time.Time       `json:"issued"`
}

// receiptID derives a receipt identifier from the purchase's content:
// BLAKE3(buyer || event || ids... || total).
func receiptID(buyer types.Address, event string, ids []types.TokenID, total uint64) types.Hash {
	buf := make([]byte, 0, types.AddressSize+len(event)+8*len(ids)+8)
	buf = append(buf, buyer[:]...)
	buf = append(buf, event...)
	for _, id := range ids {
		buf = binary.BigEndian.AppendUint64(buf, uint64(id))
	}
	buf = binary.BigEndian.AppendUint64(buf, total)
	return crypto.Hash(buf)
}
