package cas

import (
	"bytes"
	"io"

	"github.com/dgryski/go-farm"
)

// CAS memoizes scores by the content of the scored item. Two items with the
// same serialized form share one entry.
type CAS interface {
	Put(item Hashable, score float64) (Hash, error)
	Get(item Hashable) (float64, bool, error)
	Has(hash Hash) bool
	Len() int
}

type Serde interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

type Hashable interface {
	Serde
}

type Hash uint64

type entry struct {
	data  []byte
	score float64
}

// Key serializes item and returns its content hash with the bytes, which
// stores keep to reject hash collisions.
func Key(item Hashable) (Hash, []byte, error) {
	var buf bytes.Buffer
	err := item.Serialize(&buf)
	if err != nil {
		return 0, nil, err
	}
	data := buf.Bytes()
	return Hash(farm.Hash64(data)), data, nil
}
