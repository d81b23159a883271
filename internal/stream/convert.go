package stream

// ConvertReader returns a Reader producing the values of base passed through
// conv. The first conversion error interrupts the stream.
func ConvertReader[To, From any](base Reader[From], conv func(From) (To, error)) Reader[To] {
	return &convertReader[To, From]{base: base, conv: conv}
}

type convertReader[To, From any] struct {
	base Reader[From]
	from []From
	conv func(From) (To, error)
}

func (r *convertReader[To, From]) Read(values []To) (n int, err error) {
	if i := len(values); i <= cap(r.from) {
		r.from = r.from[:i]
	} else {
		r.from = make([]From, i)
	}

	rn, err := r.base.Read(r.from)

	for _, from := range r.from[:rn] {
		to, cerr := r.conv(from)
		if cerr != nil {
			return n, cerr
		}
		values[n] = to
		n++
	}
	return n, err
}
