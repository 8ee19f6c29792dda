package uniform

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// MaybeInt is an index or size that may be unset. Its encoded form is the
// plain integer, with -1 standing for unset.
type MaybeInt struct {
	value int
	set   bool
}

// Unset is the MaybeInt with no value.
var Unset = MaybeInt{}

// Some returns a MaybeInt holding v. It panics if v is negative; use
// MaybeFromRaw for values that may carry the -1 sentinel.
func Some(v int) MaybeInt {
	if v < 0 {
		panic(fmt.Sprintf("uniform: Some(%d): negative value", v))
	}
	return MaybeInt{value: v, set: true}
}

// MaybeFromRaw converts the -1 sentinel encoding into a MaybeInt. Any negative
// value is unset.
func MaybeFromRaw(raw int) MaybeInt {
	if raw < 0 {
		return Unset
	}
	return MaybeInt{value: raw, set: true}
}

// Get returns the value and whether it is set.
func (m MaybeInt) Get() (int, bool) {
	return m.value, m.set
}

// IsSet reports whether m holds a value.
func (m MaybeInt) IsSet() bool {
	return m.set
}

// Raw returns the value, or -1 when unset.
func (m MaybeInt) Raw() int {
	if !m.set {
		return -1
	}
	return m.value
}

func (m MaybeInt) String() string {
	if !m.set {
		return "unset"
	}
	return strconv.Itoa(m.value)
}

func (m MaybeInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Raw())
}

func (m *MaybeInt) UnmarshalJSON(data []byte) error {
	var raw int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MaybeFromRaw(raw)
	return nil
}

func (m MaybeInt) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeInt(int64(m.Raw()))
}

func (m *MaybeInt) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInt()
	if err != nil {
		return err
	}
	*m = MaybeFromRaw(raw)
	return nil
}
