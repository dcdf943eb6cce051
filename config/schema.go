package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of a simulation config.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// EffectorSchemas returns the JSON schema of the attributes of every registered effector type.
func EffectorSchemas() map[string]*jsonschema.Schema {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	schemas := make(map[string]*jsonschema.Schema, len(converters))
	for t, reg := range converters {
		schemas[t] = jsonschema.Reflect(reg.sample)
	}
	return schemas
}
