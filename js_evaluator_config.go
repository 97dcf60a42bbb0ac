package variants

import "time"

type jsEvaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache shares compiled guard programs through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes the registry functions to guards, both by
// name and through call(name, ...).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithTimeout interrupts guards that run longer than d. Zero disables the
// limit.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if d < 0 {
			d = 0
		}
		cfg.timeout = d
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
