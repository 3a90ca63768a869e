package jscanpartial

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is 0.
const DefaultMaxDepth = 512

// Options configure the tokenizer of a Driver.
type Options struct {
	// CompletePartialValues makes Finish return the current value
	// instead of ErrUnexpectedEOF when the input ended mid-document.
	CompletePartialValues bool

	// AllowComments enables `// line` and `/* block */` comments
	// wherever whitespace is permitted.
	AllowComments bool

	// AllowTrailingCommas accepts a comma before `]` and `}`.
	AllowTrailingCommas bool

	// AllowUnquotedKeys accepts object keys consisting of
	// ASCII letters, digits, '_' and '$' without quotes.
	AllowUnquotedKeys bool

	// KeyDecoding is applied to every object key before matching.
	KeyDecoding KeyDecodingStrategy

	// MaxDepth limits the nesting of objects and arrays,
	// 0 means DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions are to be used by default. DO NOT MUTATE.
var DefaultOptions = &Options{
	CompletePartialValues: false,
	AllowComments:         false,
	AllowTrailingCommas:   false,
	AllowUnquotedKeys:     false,
	KeyDecoding:           KeyDecodingUseDefault,
	MaxDepth:              DefaultMaxDepth,
}

func (o *Options) maxDepth() int {
	if o.MaxDepth < 1 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) decodeKey(key string) string {
	if o.KeyDecoding == nil {
		return key
	}
	return o.KeyDecoding(key)
}
