package schema

import "time"

// Token represents the tokens table - a distributable asset definition.
type Token struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// Name is the display name
	Name string `gorm:"column:name;not null;type:text" json:"name"`
	// Symbol is the short ticker, unique by convention
	Symbol string `gorm:"column:symbol;not null;uniqueIndex;type:text" json:"symbol"`
	// TotalSupply is the total minted supply
	TotalSupply int64 `gorm:"column:total_supply;not null" json:"total_supply"`
	// LedgerTokenID is the external ledger identifier, nil until the ledger job completes
	LedgerTokenID *string `gorm:"column:ledger_token_id;type:text" json:"ledger_token_id,omitempty"`
	// ContractAddress is the on-chain address, nil until supplied by the ledger
	ContractAddress *string `gorm:"column:contract_address;type:text" json:"contract_address,omitempty"`
	// CreatedAt is when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}
