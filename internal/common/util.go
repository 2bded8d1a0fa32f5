package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// It is used to drop raw passwords from memory once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
