package config

import (
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// AttributeMap is the free-form attribute set of an effector, as found in a config file.
type AttributeMap map[string]interface{}

// AttributeMapConverter converts the attributes of an effector into its typed configuration.
type AttributeMapConverter func(attributes AttributeMap) (interface{}, error)

type registeredConverter struct {
	conv   AttributeMapConverter
	sample interface{}
}

var (
	convertersMu sync.RWMutex
	converters   = map[string]registeredConverter{}
)

// RegisterEffectorAttributeMapConverter registers the converter for an effector type. sample is a
// pointer to the zero value of the typed configuration and is used to build schemas.
func RegisterEffectorAttributeMapConverter(effectorType string, conv AttributeMapConverter, sample interface{}) {
	convertersMu.Lock()
	defer convertersMu.Unlock()
	if _, ok := converters[effectorType]; ok {
		panic(errors.Errorf("trying to register two converters for effector type %q", effectorType))
	}
	converters[effectorType] = registeredConverter{conv: conv, sample: sample}
}

func lookupConverter(effectorType string) (registeredConverter, bool) {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	c, ok := converters[effectorType]
	return c, ok
}

// EffectorTypes returns the registered effector types.
func EffectorTypes() []string {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	types := make([]string, 0, len(converters))
	for t := range converters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DecodeAttributes decodes attributes into the struct pointed to by result using its json tags.
func DecodeAttributes(attributes AttributeMap, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      result,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attributes)
}

// EffectorConfig is the config of one effector attached to the hub.
type EffectorConfig struct {
	Name       string       `json:"name,omitempty"`
	Type       string       `json:"type"`
	Attributes AttributeMap `json:"attributes"`

	// ConvertedAttributes holds the typed attributes once Validate succeeded.
	ConvertedAttributes interface{} `json:"-"`
}

type validator interface {
	Validate(path string) error
}

// Validate converts the attributes into their typed form and validates it.
func (e *EffectorConfig) Validate(path string) error {
	if e.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	reg, ok := lookupConverter(e.Type)
	if !ok {
		return utils.NewConfigValidationError(path, errors.Errorf("unknown effector type %q", e.Type))
	}
	if e.ConvertedAttributes == nil {
		converted, err := reg.conv(e.Attributes)
		if err != nil {
			return utils.NewConfigValidationError(path, errors.Wrap(err, "error converting attributes"))
		}
		e.ConvertedAttributes = converted
	}
	if v, ok := e.ConvertedAttributes.(validator); ok {
		return v.Validate(path + ".attributes")
	}
	return nil
}
