package services

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed set_aliases.toml
var defaultSetAliasesTOML []byte

// SetAliases maps a legacy set code (exact case) to the current set codes it
// should also be searched under.
type SetAliases map[string][]string

type setAliasFile struct {
	Aliases map[string][]string `toml:"aliases"`
}

// DefaultSetAliases returns the built-in alias table.
func DefaultSetAliases() SetAliases {
	aliases, err := ParseSetAliases(defaultSetAliasesTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded set aliases are invalid: %v", err))
	}
	return aliases
}

// ParseSetAliases decodes an alias table from TOML.
func ParseSetAliases(data []byte) (SetAliases, error) {
	var file setAliasFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse set aliases: %w", err)
	}
	aliases := make(SetAliases, len(file.Aliases))
	for code, targets := range file.Aliases {
		aliases[code] = append([]string(nil), targets...)
	}
	return aliases, nil
}

// LoadSetAliases reads an alias table from path. An empty path yields the
// built-in table.
func LoadSetAliases(path string) (SetAliases, error) {
	if path == "" {
		return DefaultSetAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read set aliases file: %w", err)
	}
	return ParseSetAliases(data)
}

// Targets returns the alias targets for a set code, looked up case-sensitively.
func (a SetAliases) Targets(setCode string) []string {
	return a[setCode]
}
