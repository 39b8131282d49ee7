package chain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

var ErrInvalidAddress = errors.New("invalid address")

// ValidateAddress checks addr is a bech32 account or contract address with
// the expected human readable prefix.
func ValidateAddress(addr, prefix string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w %q: %s", ErrInvalidAddress, addr, err.Error())
	}
	if prefix != "" && hrp != prefix {
		return fmt.Errorf("%w %q: prefix %q, expected %q", ErrInvalidAddress, addr, hrp, prefix)
	}

	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return fmt.Errorf("%w %q: %s", ErrInvalidAddress, addr, err.Error())
	}
	// 20 bytes for accounts, 32 for contracts
	if len(decoded) != 20 && len(decoded) != 32 {
		return fmt.Errorf("%w %q: unexpected length %d", ErrInvalidAddress, addr, len(decoded))
	}

	return nil
}

// EncodeAddress builds a bech32 address from raw bytes.
func EncodeAddress(prefix string, raw []byte) (string, error) {
	converted, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, converted)
}
