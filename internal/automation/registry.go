package automation

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// registryFile is the on-disk shape of the automation registry.
type registryFile struct {
	Automations []*Automation `toml:"automations"`
}

// LoadRegistry reads the automation registry from a TOML file. The registry
// is owned externally; this engine only reads it. A missing file is an empty
// registry, not an error.
func LoadRegistry(path string) ([]*Automation, error) {
	var reg registryFile
	if _, err := toml.DecodeFile(path, &reg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load automation registry: %w", err)
	}

	for i, a := range reg.Automations {
		if a.ID == "" {
			return nil, fmt.Errorf("load automation registry: entry %d has no id", i)
		}
	}
	return reg.Automations, nil
}
