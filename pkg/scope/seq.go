package scope

import (
	"iter"
	"net/url"
)

// Concat yields every element of seqs in order. Each sequence is started
// only after the previous one is exhausted; iteration stops at the first
// error.
func Concat(seqs ...iter.Seq2[*url.URL, error]) iter.Seq2[*url.URL, error] {
	return func(yield func(*url.URL, error) bool) {
		for _, seq := range seqs {
			if seq == nil {
				continue
			}
			stop := false
			for u, err := range seq {
				if !yield(u, err) || err != nil {
					stop = true
					break
				}
			}
			if stop {
				return
			}
		}
	}
}

func emptySeq(func(*url.URL, error) bool) {}
