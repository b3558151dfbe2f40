package models

import "time"

// SecType is the single-letter instrument classification stored in the
// securities table.
type SecType string

const (
	SecTypeStock     SecType = "S"
	SecTypeBond      SecType = "B"
	SecTypeFund      SecType = "F"
	SecTypeIndex     SecType = "I"
	SecTypeOption    SecType = "O"
	SecTypeUndefined SecType = "U"
)

// Valid reports whether t is one of the known classifications.
func (t SecType) Valid() bool {
	switch t {
	case SecTypeStock, SecTypeBond, SecTypeFund, SecTypeIndex, SecTypeOption, SecTypeUndefined:
		return true
	}
	return false
}

// Security is a financial instrument identified by its symbol.
type Security struct {
	Symbol         string
	CompanyName    string
	SecType        SecType
	Description    string
	DateOfCreation time.Time
}
