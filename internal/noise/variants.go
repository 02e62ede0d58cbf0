package noise

// octaveState is carried through the octave loop of a single evaluation.
type octaveState[T Float] struct {
	result T
	weight T
	amp    T // persistence^i of the current octave
	gain   T
}

// rule folds octave samples into a fractal value.
type rule[T Float] interface {
	// octave folds the raw sample of octave i into s.
	octave(s *octaveState[T], i int, signal T)
	// finish maps the folded state into the output range; norm is the
	// value scale returned for the current configuration.
	finish(s *octaveState[T], norm T) T
	// scale derives the normalisation factor for a configuration.
	scale(persistence T, octaves int) T
}

func ruleFor[T Float](kind Kind) rule[T] {
	switch kind {
	case KindBillow:
		return billowRule[T]{}
	case KindRidgedMulti:
		return ridgedRule[T]{}
	case KindHybridMulti:
		return hybridRule[T]{}
	case KindBasicMulti:
		return basicRule[T]{}
	default:
		return fbmRule[T]{}
	}
}

// amplitudeScale is the reciprocal of the summed octave amplitudes.
func amplitudeScale[T Float](persistence T, octaves int) T {
	var sum T
	for i := 0; i < octaves; i++ {
		sum += powi(persistence, i)
	}
	if sum == 0 {
		return 1
	}
	return 1 / sum
}

type fbmRule[T Float] struct{}

func (fbmRule[T]) octave(s *octaveState[T], _ int, signal T) {
	s.result += signal * s.amp
}

func (fbmRule[T]) finish(s *octaveState[T], norm T) T { return s.result * norm }

func (fbmRule[T]) scale(persistence T, octaves int) T {
	return amplitudeScale(persistence, octaves)
}

type billowRule[T Float] struct{}

func (billowRule[T]) octave(s *octaveState[T], _ int, signal T) {
	signal = 2*abs(signal) - 1
	s.result += signal * s.amp
}

func (billowRule[T]) finish(s *octaveState[T], norm T) T { return s.result * norm }

func (billowRule[T]) scale(persistence T, octaves int) T {
	return amplitudeScale(persistence, octaves)
}

type ridgedRule[T Float] struct{}

func (ridgedRule[T]) octave(s *octaveState[T], _ int, signal T) {
	signal = 1 - abs(signal)
	// Squaring sharpens the ridges.
	signal *= signal
	signal *= s.weight

	// The clamp keeps the weight feedback from diverging.
	s.weight = clamp(signal*s.gain, 0, 1)

	s.result += signal * s.amp
}

func (ridgedRule[T]) finish(s *octaveState[T], _ T) T {
	return mulAdd(s.result, T(1.0/3.0), -1)
}

func (ridgedRule[T]) scale(T, int) T { return 1 }

type hybridRule[T Float] struct{}

func (hybridRule[T]) octave(s *octaveState[T], i int, signal T) {
	signal *= s.amp
	if i == 0 {
		s.result = signal
		s.weight = signal
		return
	}
	s.weight = clamp(s.weight, 0, 1)
	s.result += s.weight * signal
	s.weight *= signal
}

func (hybridRule[T]) finish(s *octaveState[T], norm T) T { return s.result * norm }

func (hybridRule[T]) scale(persistence T, octaves int) T {
	return amplitudeScale(persistence, octaves)
}

type basicRule[T Float] struct{}

func (basicRule[T]) octave(s *octaveState[T], i int, signal T) {
	if i == 0 {
		s.result = signal
		return
	}
	s.result += signal * s.amp * s.result
}

func (basicRule[T]) finish(s *octaveState[T], norm T) T { return s.result * norm }

// scale bounds the multiplicative growth: octave i can stretch the result by
// at most a factor of 1+|persistence^i|.
func (basicRule[T]) scale(persistence T, octaves int) T {
	growth := T(1)
	for i := 1; i < octaves; i++ {
		growth *= 1 + abs(powi(persistence, i))
	}
	return 1 / growth
}
