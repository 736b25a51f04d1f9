package directory

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Seed is the YAML document directories are seeded from.
type Seed struct {
	Communities []Community `koanf:"communities"`
	Sports      []Sport     `koanf:"sports"`
}

// LoadSeed reads communities and sports from a YAML file.
func LoadSeed(path string) (Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Seed{}, fmt.Errorf("load directory seed %q: %w", path, err)
	}
	var seed Seed
	if err := k.UnmarshalWithConf("", &seed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Seed{}, fmt.Errorf("decode directory seed %q: %w", path, err)
	}
	return seed, nil
}
