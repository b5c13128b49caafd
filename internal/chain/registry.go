package chain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

//go:embed chains.yaml
var defaultChains []byte

// Chain holds the simulated cost model of a single network.
type Chain struct {
	Name                string                         `json:"name"`
	DisplayName         string                         `json:"display_name"`
	ChainID             int64                          `json:"chain_id,omitempty"` // 0 for non-EVM
	NativeCurrency      string                         `json:"native_currency,omitempty"`
	GasFee              decimal.Decimal                `json:"gas_fee"`
	ContractMultipliers map[Complexity]decimal.Decimal `json:"contract_multipliers,omitempty"`
}

// Registry is the chain registry. It is built once and never mutated.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// chainYAML is one entry of the chains file.
type chainYAML struct {
	DisplayName         string             `yaml:"display_name"`
	ChainID             int64              `yaml:"chain_id"`
	NativeCurrency      string             `yaml:"native_currency"`
	GasFee              *float64           `yaml:"gas_fee"`
	ContractMultipliers map[string]float64 `yaml:"contract_multipliers"`
}

// Load reads the chains file at path. An empty path loads the built-in set.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultChains)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chains file: %w", err)
	}
	return Parse(data)
}

// Builtin returns the registry built from the embedded chains file.
func Builtin() *Registry {
	r, err := Parse(defaultChains)
	if err != nil {
		panic(fmt.Sprintf("embedded chains.yaml: %v", err))
	}
	return r
}

// Parse builds a registry from a YAML mapping of chain name to gas settings.
// The order of the mapping is kept; the first chain is the default.
func Parse(data []byte) (*Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing chains: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("parsing chains: no chains defined")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing chains: line %d: expected a mapping of chain names", doc.Line)
	}

	chains := make([]Chain, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := strings.ToLower(strings.TrimSpace(doc.Content[i].Value))
		var raw chainYAML
		if err := doc.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}
		c, err := raw.toChain(name)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	if len(chains) == 0 {
		return nil, errors.New("parsing chains: no chains defined")
	}
	return NewRegistry(chains)
}

func (raw chainYAML) toChain(name string) (Chain, error) {
	if name == "" {
		return Chain{}, errors.New("chain with empty name")
	}
	if raw.GasFee == nil {
		return Chain{}, fmt.Errorf("chain %q: gas_fee is required", name)
	}
	if *raw.GasFee < 0 {
		return Chain{}, fmt.Errorf("chain %q: gas_fee must not be negative", name)
	}
	c := Chain{
		Name:           name,
		DisplayName:    raw.DisplayName,
		ChainID:        raw.ChainID,
		NativeCurrency: raw.NativeCurrency,
		GasFee:         decimal.NewFromFloat(*raw.GasFee),
	}
	if c.DisplayName == "" {
		c.DisplayName = name
	}
	if len(raw.ContractMultipliers) > 0 {
		c.ContractMultipliers = make(map[Complexity]decimal.Decimal, len(raw.ContractMultipliers))
		for level, m := range raw.ContractMultipliers {
			if m < 0 {
				return Chain{}, fmt.Errorf("chain %q: multiplier for %q must not be negative", name, level)
			}
			c.ContractMultipliers[ParseComplexity(level)] = decimal.NewFromFloat(m)
		}
	}
	return c, nil
}

// NewRegistry indexes chains. Names must be unique.
func NewRegistry(chains []Chain) (*Registry, error) {
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		key := strings.ToLower(c.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate chain %q", c.Name)
		}
		r.byName[key] = c
		if c.ChainID != 0 {
			r.byID[c.ChainID] = c
		}
	}
	return r, nil
}

// All returns every chain in file order.
func (r *Registry) All() []Chain {
	return r.chains
}

// Names returns the chain names in file order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.chains))
	for i, c := range r.chains {
		out[i] = c.Name
	}
	return out
}

// Default returns the first chain.
func (r *Registry) Default() *Chain {
	if len(r.chains) == 0 {
		return nil
	}
	return &r.chains[0]
}

// GetByName finds a chain by its slug name (e.g. "polygon").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return c, nil
}

// GetByChainID finds an EVM chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %d", ErrChainNotFound, id)
	}
	return c, nil
}

// Lookup resolves a user-supplied chain reference: a name such as
// "polygon", or a numeric chain ID such as "137". Names win.
func (r *Registry) Lookup(ref string) (*Chain, error) {
	c, err := r.GetByName(ref)
	if err == nil {
		return c, nil
	}
	if id, perr := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); perr == nil {
		return r.GetByChainID(id)
	}
	return nil, err
}
