package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrUnknownNetwork = errors.New("unknown network")

// Network is a chain profile: which endpoints to reach and how addresses look.
type Network struct {
	ChainID      string `yaml:"chain_id"`
	ChainName    string `yaml:"chain_name"`
	LCDAddr      string `yaml:"lcd"`
	SignerAddr   string `yaml:"signer"`
	Bech32Prefix string `yaml:"bech32_prefix"`
}

type networksFile struct {
	Default  string             `yaml:"default"`
	Networks map[string]Network `yaml:"networks"`
}

// LoadNetwork reads the profiles from path and returns the named one, or the
// file's default profile when name is empty.
func LoadNetwork(path, name string) (Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Network{}, errors.New("failed to read the networks file: " + err.Error())
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Network{}, errors.New("failed to parse the networks file: " + err.Error())
	}

	if name == "" {
		name = file.Default
	}
	network, ok := file.Networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
	return network, nil
}

// FromEnv is the profile built from the environment alone.
func FromEnv() Network {
	return Network{
		ChainName:    GetChainName(),
		LCDAddr:      GetLCDAddr(),
		SignerAddr:   GetSignerAddr(),
		Bech32Prefix: GetBech32Prefix(),
	}
}

// Merge fills the empty fields of n from fallback.
func (n Network) Merge(fallback Network) Network {
	if n.ChainID == "" {
		n.ChainID = fallback.ChainID
	}
	if n.ChainName == "" {
		n.ChainName = fallback.ChainName
	}
	if n.LCDAddr == "" {
		n.LCDAddr = fallback.LCDAddr
	}
	if n.SignerAddr == "" {
		n.SignerAddr = fallback.SignerAddr
	}
	if n.Bech32Prefix == "" {
		n.Bech32Prefix = fallback.Bech32Prefix
	}
	return n
}
