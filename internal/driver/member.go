package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jasm/internal/insn"
)

// MemberFormat is the encoding of a compiled member on disk.
type MemberFormat string

const (
	FormatMsgpack MemberFormat = "msgpack"
	FormatJSON    MemberFormat = "json"
)

// ParseMemberFormat accepts msgpack|mp|json.
func ParseMemberFormat(s string) (MemberFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msgpack", "mp", "":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown member format %q (expected msgpack|json)", s)
}

// Extension is the file suffix used for the format.
func (f MemberFormat) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".mp"
}

// OutputPath maps a listing path to its member file next to it or under dir.
func OutputPath(listing, dir string, format MemberFormat) string {
	base := strings.TrimSuffix(listing, filepath.Ext(listing)) + format.Extension()
	if dir == "" {
		return base
	}
	return filepath.Join(dir, filepath.Base(base))
}

// EncodeMember writes m in the given format.
func EncodeMember(w io.Writer, m *insn.Member, format MemberFormat) error {
	if format == FormatJSON {
		data, err := insn.MarshalMemberJSON(m)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		return nil
	}
	return insn.EncodeMember(w, m)
}

// WriteMember stores m at path, replacing the file atomically.
func WriteMember(path string, m *insn.Member, format MemberFormat) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".member-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	bw := bufio.NewWriter(f)
	err = EncodeMember(bw, m, format)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DecodeMember reads a member, telling JSON from msgpack by the first
// non-blank byte.
func DecodeMember(data []byte) (*insn.Member, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return insn.UnmarshalMemberJSON(trimmed)
	}
	return insn.DecodeMember(bytes.NewReader(data))
}

// LoadMember reads a member file written by WriteMember.
func LoadMember(path string) (*insn.Member, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := DecodeMember(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
