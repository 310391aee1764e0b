package plugin

import "fmt"

// Transformers maps a config name to a factory, arg is transformer specific
var Transformers = map[string]func(arg string) MetricTransformer{
	"calc_rate": func(string) MetricTransformer {
		return &CalcRatePlugin{}
	},
	"json_path": func(arg string) MetricTransformer {
		return NewJSONTransformer(arg)
	},
}

func TransformerLookup(name, arg string) (MetricTransformer, error) {
	factory, ok := Transformers[name]
	if !ok {
		return nil, fmt.Errorf("unknown transformer: %s", name)
	}
	return factory(arg), nil
}
