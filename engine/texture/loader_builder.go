package texture

// LoaderOption is a functional option applied to a loader during construction via NewLoader.
type LoaderOption func(*loaderImpl)

// WithWorkers sets the maximum number of concurrent decodes.
//
// Parameters:
//   - n: the worker count, ignored when below 1
//
// Returns:
//   - LoaderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderOption {
	return func(l *loaderImpl) {
		if n >= 1 {
			l.workers = n
		}
	}
}

// WithDecoder replaces the BMP file decoder.
func WithDecoder(decode DecodeFunc) LoaderOption {
	return func(l *loaderImpl) {
		if decode != nil {
			l.decode = decode
		}
	}
}
