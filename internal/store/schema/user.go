package schema

import "time"

// User represents the users table - an identity reached by an airdrop.
// A user is created lazily on the first observed interaction from an unknown
// wallet address or X handle and is never deleted.
type User struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// Username is the unique display name
	Username string `gorm:"column:username;not null;uniqueIndex;type:text" json:"username"`
	// Password is the credential hash (peripheral auth surface, never returned in listings)
	Password string `gorm:"column:password;not null;type:text" json:"-"`
	// WalletAddress is the user's wallet address, nil until observed on the contract path
	WalletAddress *string `gorm:"column:wallet_address;type:text;index" json:"wallet_address,omitempty"`
	// XHandle is the normalized X handle, nil until observed on the social path
	XHandle *string `gorm:"column:x_handle;type:text;index" json:"x_handle,omitempty"`
	// CreatedAt is when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
