package patcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"laravel-api-forge/internal/apperr"
)

// Manifest is a composer.json document edited in place. Unknown keys and the key
// order of the file are preserved; only the edited paths change.
type Manifest struct {
	path string
	perm os.FileMode
	raw  []byte
}

// Key joins path components into a gjson/sjson path, escaping the characters
// those paths treat specially.
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = pathEscaper.Replace(p)
	}
	return strings.Join(escaped, ".")
}

var pathEscaper = strings.NewReplacer(`.`, `\.`, `*`, `\*`, `?`, `\?`)

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Failed to stat "+path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Failed to read "+path, err)
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, apperr.New(apperr.FileOperationFailed, "Malformed JSON document "+path)
	}
	return &Manifest{path: path, perm: info.Mode().Perm(), raw: raw}, nil
}

// EditManifest loads the manifest at path, applies fn, and saves it.
func EditManifest(path string, fn func(*Manifest) error) error {
	m, err := LoadManifest(path)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return m.Save()
}

// Get returns the value at path.
func (m *Manifest) Get(path string) gjson.Result {
	return gjson.GetBytes(m.raw, path)
}

// Set stores value at path, creating intermediate objects.
func (m *Manifest) Set(path string, value any) error {
	encoded, err := marshal(value)
	if err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to encode "+path, err)
	}
	raw, err := sjson.SetRawBytes(m.raw, path, encoded)
	if err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to set "+path, err)
	}
	m.raw = raw
	return nil
}

// AppendScript appends cmd to the scripts.<event> list. A string-valued event is
// promoted to a list. Appending a command already listed is a no-op.
func (m *Manifest) AppendScript(event, cmd string) error {
	path := Key("scripts", event)
	current := m.Get(path)

	switch {
	case !current.Exists():
		return m.Set(path, []string{cmd})
	case current.Type == gjson.String:
		if current.Str == cmd {
			return nil
		}
		return m.Set(path, []string{current.Str, cmd})
	case current.IsArray():
		list := stringList(current)
		for _, existing := range list {
			if existing == cmd {
				return nil
			}
		}
		return m.Set(path, append(list, cmd))
	default:
		return apperr.New(apperr.FileOperationFailed, fmt.Sprintf("scripts.%s is neither a string nor a list", event))
	}
}

// SetScript replaces scripts.<name> with cmds.
func (m *Manifest) SetScript(name string, cmds ...string) error {
	return m.Set(Key("scripts", name), cmds)
}

// InsertScriptAfter inserts cmd right after anchor in the scripts.<event> list.
// It reports whether cmd was inserted: a missing anchor or a command already
// present leaves the list unchanged.
func (m *Manifest) InsertScriptAfter(event, anchor, cmd string) (bool, error) {
	path := Key("scripts", event)
	current := m.Get(path)
	if !current.IsArray() {
		return false, nil
	}

	list := stringList(current)
	at := -1
	for i, existing := range list {
		if existing == cmd {
			return false, nil
		}
		if existing == anchor && at < 0 {
			at = i
		}
	}
	if at < 0 {
		return false, nil
	}

	updated := make([]string, 0, len(list)+1)
	updated = append(updated, list[:at+1]...)
	updated = append(updated, cmd)
	updated = append(updated, list[at+1:]...)
	return true, m.Set(path, updated)
}

// Bytes renders the document with 4-space indentation and a trailing newline.
func (m *Manifest) Bytes() ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, m.raw); err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Malformed JSON document "+m.path, err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Malformed JSON document "+m.path, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Save writes the document back to the file it was loaded from.
func (m *Manifest) Save() error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, m.perm); err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to write "+m.path, err)
	}
	return nil
}

// marshal encodes without HTML escaping; encoding/json never escapes '/'.
func marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func stringList(list gjson.Result) []string {
	var out []string
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}
