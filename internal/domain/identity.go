package domain

// Identity is the currently authenticated wallet account, or absent. There is
// a single active identity per process; only the session manager writes it.
type Identity struct {
	Address string `json:"address"`
}

// Present reports whether an account is connected.
func (i Identity) Present() bool {
	return i.Address != ""
}

// Config carries the externally supplied flow parameters: where service fees
// go, the fixed amounts in whole units of the native asset, and how long a
// server-side settlement wait may run before it is abandoned.
type Config struct {
	PlatformAddress    string `yaml:"platformAddress"`
	FeeAmount          int64  `yaml:"feeAmount"`
	ActivationAmount   int64  `yaml:"activationAmount"`
	SettleAwaitSeconds int    `yaml:"settleAwaitSeconds"`
}
