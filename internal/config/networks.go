// Package config holds the network profiles the binaries select from.
package config

import (
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"gopkg.in/yaml.v3"
)

// Network describes one chain served by the binaries.
type Network struct {
	Name    string          `yaml:"name"`
	ChainID uint64          `yaml:"chain_id"`
	Variant convert.Variant `yaml:"variant"`
	RPCURL  string          `yaml:"rpc_url"`
	// RPS caps requests per second to RPCURL. Zero means unlimited.
	RPS int `yaml:"rps,omitempty"`
}

// ChainIDBig returns the chain id as used by signers.
func (n Network) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(n.ChainID)
}

// Registry maps network names to profiles.
type Registry struct {
	Networks map[string]Network `yaml:"networks"`
}

// DefaultRegistry returns the built-in profiles. RPC URLs point at local nodes.
func DefaultRegistry() *Registry {
	return &Registry{
		Networks: map[string]Network{
			"ethereum": {Name: "ethereum", ChainID: 1, Variant: convert.Standard, RPCURL: "http://localhost:8545"},
			"sepolia":  {Name: "sepolia", ChainID: 11155111, Variant: convert.Standard, RPCURL: "http://localhost:8545"},
			"optimism": {Name: "optimism", ChainID: 10, Variant: convert.Optimism, RPCURL: "http://localhost:9545"},
			"base":     {Name: "base", ChainID: 8453, Variant: convert.Optimism, RPCURL: "http://localhost:9545"},
		},
	}
}

// Load reads a registry file. Environment references in rpc_url are expanded.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode networks: %w", err)
	}
	for key, n := range r.Networks {
		if n.Name == "" {
			n.Name = key
		}
		n.RPCURL = os.ExpandEnv(n.RPCURL)
		r.Networks[key] = n
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every profile.
func (r *Registry) Validate() error {
	if len(r.Networks) == 0 {
		return fmt.Errorf("no networks configured")
	}
	for _, key := range r.Names() {
		n := r.Networks[key]
		switch {
		case n.ChainID == 0:
			return fmt.Errorf("network %s: chain_id is required", key)
		case !n.Variant.Valid():
			return fmt.Errorf("network %s: variant is required", key)
		case n.RPCURL == "":
			return fmt.Errorf("network %s: rpc_url is required", key)
		case n.RPS < 0:
			return fmt.Errorf("network %s: rps must not be negative", key)
		}
	}
	return nil
}

// Names returns the configured network names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Networks))
	for name := range r.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Network returns the profile called name.
func (r *Registry) Network(name string) (Network, error) {
	n, ok := r.Networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q, configured: %v", name, r.Names())
	}
	return n, nil
}

// Select returns the profile called name from the registry at path, or from the built-in
// registry when path is empty. A non-empty rpcURL overrides the profile's endpoint and a
// positive rps its rate limit.
func Select(path, name, rpcURL string, rps int) (Network, error) {
	r := DefaultRegistry()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Network{}, err
		}
		r = loaded
	}
	n, err := r.Network(name)
	if err != nil {
		return Network{}, err
	}
	if rpcURL != "" {
		n.RPCURL = rpcURL
	}
	if rps > 0 {
		n.RPS = rps
	}
	return n, nil
}
