package legacyx

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DropsPerUnit is the base-unit factor of the ledger's native asset:
// 1 XRP = 10^6 drops.
const DropsPerUnit = 1_000_000

// UnitsToDrops converts a whole-unit amount to the drop string the ledger
// expects. Conversion is exact for any non-negative integer input.
func UnitsToDrops(units int64) string {
	return strconv.FormatInt(units*DropsPerUnit, 10)
}

// ParseDrops parses a drop string back into base units.
func ParseDrops(drops string) (int64, error) {
	n, err := strconv.ParseInt(drops, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid drops value %q", drops)
	}
	return n, nil
}

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

const addressAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

func inAlphabet(c byte) bool {
	for i := 0; i < len(addressAlphabet); i++ {
		if addressAlphabet[i] == c {
			return true
		}
	}
	return false
}

// IsAddress reports whether s is shaped like a classic ledger account
// address. This is a shape check only; full checksum validation is the
// backend's job.
func IsAddress(s string) bool {
	if len(s) < 25 || len(s) > 35 || s[0] != 'r' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !inAlphabet(s[i]) {
			return false
		}
	}
	return true
}

// IsDID reports whether s is shaped like a decentralized identifier.
func IsDID(s string) bool {
	return len(s) > 4 && s[:4] == "did:"
}
