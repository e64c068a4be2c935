// internal/storage/models/receipt.go
package models

// Receipt is the persisted form of a buy's trade receipt. UnlockAt is
// advisory metadata for clients; nothing reads it back for enforcement.
type Receipt struct {
	BaseModel
	ReceiptID string `gorm:"unique;not null;type:varchar(36)"`
	Buyer     string `gorm:"index;not null;type:varchar(44)"`
	NativeIn  uint64 `gorm:"not null"`
	TokensOut uint64 `gorm:"not null"`
	LockTier  string `gorm:"not null;type:varchar(4)"`
	BoughtAt  int64  `gorm:"index;not null"`
	UnlockAt  int64  `gorm:"not null"`
}

// Settlement is the persisted form of a sell.
type Settlement struct {
	BaseModel
	Seller    string `gorm:"index;not null;type:varchar(44)"`
	TokenIn   uint64 `gorm:"not null"`
	BurnFee   uint64 `gorm:"not null"`
	NativeOut uint64 `gorm:"not null"`
	SoldAt    int64  `gorm:"index;not null"`
}
