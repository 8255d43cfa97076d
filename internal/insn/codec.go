package insn

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// memberSchema is bumped whenever Member's encoded layout changes.
const memberSchema uint16 = 1

type envelope struct {
	Schema uint16  `msgpack:"schema" json:"schema"`
	Member *Member `msgpack:"member" json:"member"`
}

// EncodeMember writes m as msgpack.
func EncodeMember(w io.Writer, m *Member) error {
	return msgpack.NewEncoder(w).Encode(envelope{Schema: memberSchema, Member: m})
}

// DecodeMember reads a member written by EncodeMember.
func DecodeMember(r io.Reader) (*Member, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}
	if env.Schema != memberSchema {
		return nil, fmt.Errorf("member schema %d, want %d", env.Schema, memberSchema)
	}
	if env.Member == nil {
		return nil, fmt.Errorf("empty member payload")
	}
	return env.Member, nil
}

// MarshalMemberJSON renders m for tooling; doubles are strings so NaN and
// infinities survive.
func MarshalMemberJSON(m *Member) ([]byte, error) {
	return json.MarshalIndent(envelope{Schema: memberSchema, Member: m}, "", "  ")
}

func UnmarshalMemberJSON(data []byte) (*Member, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Member == nil {
		return nil, fmt.Errorf("empty member payload")
	}
	return env.Member, nil
}

type jsonConstant struct {
	Kind   ConstKind `json:"kind"`
	Long   int64     `json:"long,omitempty"`
	Double string    `json:"double,omitempty"`
	Str    string    `json:"str,omitempty"`
	Handle *Handle   `json:"handle,omitempty"`
}

func (c Constant) MarshalJSON() ([]byte, error) {
	jc := jsonConstant{Kind: c.Kind, Long: c.Long, Str: c.Str, Handle: c.Handle}
	switch c.Kind {
	case ConstFloat:
		jc.Double = strconv.FormatFloat(c.Double, 'g', -1, 32)
	case ConstDouble:
		jc.Double = strconv.FormatFloat(c.Double, 'g', -1, 64)
	}
	return json.Marshal(jc)
}

func (c *Constant) UnmarshalJSON(data []byte) error {
	var jc jsonConstant
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	*c = Constant{Kind: jc.Kind, Long: jc.Long, Str: jc.Str, Handle: jc.Handle}
	if jc.Double == "" {
		return nil
	}
	bits := 64
	if jc.Kind == ConstFloat {
		bits = 32
	}
	v, err := strconv.ParseFloat(jc.Double, bits)
	if err != nil && !math.IsInf(v, 0) {
		return fmt.Errorf("constant double %q: %w", jc.Double, err)
	}
	c.Double = v
	return nil
}
