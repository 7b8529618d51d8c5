// Package sboxfile reads and writes substitution tables as YAML documents:
//
//	name: reference
//	rows:
//	  - [3, 5, 6, 1, 0, 8, 14, 10, 2, 11, 9, 12, 13, 4, 7, 15]
//	  - ...
//
// Validation is left to magma.NewSBox.
package sboxfile

import (
	"fmt"
	"os"

	"github.com/jedisct1/go-magma"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a table.
type Document struct {
	Name string  `yaml:"name,omitempty"`
	Rows [][]int `yaml:"rows,flow"`
}

// Parse decodes a YAML document and validates its table.
func Parse(data []byte) (*magma.SBox, string, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("unable to decode sbox document: %w", err)
	}

	sbox, err := magma.NewSBoxFromInts(doc.Rows)
	if err != nil {
		return nil, "", err
	}
	return sbox, doc.Name, nil
}

// Load reads and validates the table stored at path.
func Load(path string) (*magma.SBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sbox, _, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sbox, nil
}

// Marshal encodes sbox as a YAML document.
func Marshal(sbox *magma.SBox, name string) ([]byte, error) {
	return yaml.Marshal(Document{
		Name: name,
		Rows: sbox.Ints(),
	})
}
