package seed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"HeroCatalog/internal/hero"
)

type yamlFile struct {
	Heroes []hero.Hero `yaml:"heroes"`
}

func FromYAMLFile(path string) ([]hero.Hero, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return FromYAML(f)
}

// FromYAML decodes a document of the form
//
//	heroes:
//	  - id: "1"
//	    name: Spider-Man
//	    powers: [Wall-crawling]
//	    ...
func FromYAML(r io.Reader) ([]hero.Hero, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	if err := validate(doc.Heroes); err != nil {
		return nil, err
	}
	return doc.Heroes, nil
}
