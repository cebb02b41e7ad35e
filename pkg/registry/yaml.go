package registry

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// yamlType mirrors Config with an extra models list, so deployments can
// declare notification types in configuration files.
type yamlType struct {
	Config `yaml:",inline"`
	Models []string `yaml:"models"`
}

// LoadYAML registers every type declared in a YAML document of the form:
//
//	device_down:
//	  level: error
//	  verb: went offline
//	  email_subject: "[{{.Site.Name}}] Device {{.Notification.Verb}}"
//	  message: "Device {{.Notification.Verb}}"
//	  models: [device]
//
// Types are registered in lexical name order so failures are deterministic.
// Registration stops at the first error, leaving earlier types registered.
func (r *Registry) LoadYAML(data []byte) error {
	var doc map[string]yamlType
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := doc[name]
		if err := r.Register(name, t.Config, t.Models...); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAMLFrom reads a YAML type declaration document from rd and registers
// its types. See LoadYAML.
func (r *Registry) LoadYAMLFrom(rd io.Reader) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return r.LoadYAML(data)
}
