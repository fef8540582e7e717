package model

// Sequence names
const (
	SequenceRVNumber = "rv_number"
)

// RVNumberSeed makes the first allocated voucher number RV-1001.
const RVNumberSeed = 1000

// DocumentSequence is a named atomic counter backing document number
// generation. Incremented with a guarded UPDATE inside the allocating
// transaction, so concurrent allocations never observe the same value.
type DocumentSequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}
