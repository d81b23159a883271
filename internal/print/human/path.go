package human

import (
	"encoding"
	"flag"
	"os"
	"path/filepath"
	"strings"
)

// Path is a path on the file system where a leading "~" designates the home
// directory of the user. The "~" is kept in the value and expanded by
// Resolve, so configuration files print back the way they were written.
type Path string

func (p Path) String() string { return string(p) }

// Resolve returns the path with a leading "~" expanded. Forms like "~user"
// are not expanded.
func (p Path) Resolve() (string, error) {
	rest, ok := strings.CutPrefix(string(p), "~")
	if !ok || (rest != "" && rest[0] != os.PathSeparator) {
		return string(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}

func (p *Path) Set(s string) error {
	*p = Path(s)
	return nil
}

func (p Path) MarshalText() ([]byte, error) { return []byte(p), nil }

func (p *Path) UnmarshalText(b []byte) error { return p.Set(string(b)) }

var (
	_ encoding.TextMarshaler   = Path("")
	_ encoding.TextUnmarshaler = (*Path)(nil)
	_ flag.Value               = (*Path)(nil)
)
