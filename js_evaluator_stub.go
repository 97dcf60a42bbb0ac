//go:build !js_eval

package variants

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil,
// which makes resolvers fall back to the expr engine.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
