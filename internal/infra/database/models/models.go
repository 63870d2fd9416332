package models

import "time"

// ContractRecord is the locally persisted view of an activated inheritance
// contract. The backend owns the authoritative record; this is the client's
// own history.
type ContractRecord struct {
	ID        uint      `json:"-" gorm:"primarykey;autoIncrement"`
	Testator  string    `json:"testatorAddress" gorm:"index"`
	Inheritor string    `json:"inheritorAddress" gorm:"index"`
	Escrow    string    `json:"escrowAddress" gorm:"uniqueIndex"`
	Message   string    `json:"message"`
	CDate     time.Time `json:"cdate" gorm:"autoCreateTime"`
}

// SessionRecord logs each signing session and its latest observed state.
type SessionRecord struct {
	ID       string    `json:"id" gorm:"primarykey"`
	Flow     string    `json:"flow" gorm:"index"`
	State    string    `json:"state"`
	ProofURI string    `json:"proofUri"`
	CDate    time.Time `json:"cdate" gorm:"autoCreateTime"`
}
