package filter

// Shuffle implements the byte shuffle stage.
// It rearranges bytes to improve compression by grouping
// equal byte positions together (all byte 0s, then all byte 1s, ...).
// Trailing bytes that do not fill a whole element are left in place.
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a shuffle stage for elements of elemSize bytes.
func NewShuffle(elemSize int) *Shuffle {
	if elemSize < 1 {
		elemSize = 1
	}
	return &Shuffle{elemSize: elemSize}
}


// Encode applies the shuffle.
// Input is organized as: [elem0][elem1]...[elemM][tail]
// Output is organized as: [all byte 0s][all byte 1s]...[all byte N-1s][tail]
func (f *Shuffle) Encode(input []byte) []byte {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			output[j*numElems+i] = input[i*f.elemSize+j]
		}
	}
	tail := numElems * f.elemSize
	copy(output[tail:], input[tail:])
	return output
}

// Decode reverses Encode.
func (f *Shuffle) Decode(input []byte) []byte {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			// In shuffled format, byte j of all elements is at offset j*numElems
			output[i*f.elemSize+j] = input[j*numElems+i]
		}
	}
	tail := numElems * f.elemSize
	copy(output[tail:], input[tail:])
	return output
}
