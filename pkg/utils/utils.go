package utils

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// SchemaDirective returns the yaml-language-server comment line that points
// editors at the JSON schema for a YAML document.
func SchemaDirective(schemaName string) string {
	return fmt.Sprintf("# yaml-language-server: $schema=%s\n", schemaName)
}

// MarshalSampleConfig renders config as YAML prefixed with the schema
// directive, so generated sample files pick up editor completion.
func MarshalSampleConfig(config any, schemaName string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}

	return append([]byte(SchemaDirective(schemaName)), yamlBytes...), nil
}
