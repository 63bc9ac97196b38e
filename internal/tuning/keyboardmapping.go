package tuning

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyEntry is a single (outgoing key, outgoing channel) target.
type KeyEntry struct {
	Key     int
	Channel int
}

// KeyboardMapping maps (incoming key, incoming channel) to an outgoing
// (key, channel), used only at MIDI export and live playback time. The
// default is the diagonal identity mapping on channel 1.
//
// Grounded on original_source/Source/Core/Midi/KeyboardMapping.h and
// Configuration/Resources/Models/KeyboardMapping.h.
type KeyboardMapping struct {
	numChannels int
	// entries[channel-1][key] overrides the default when present.
	entries []map[int]KeyEntry
}

const defaultChannel = 1

// NewKeyboardMapping constructs an identity mapping over numChannels
// MIDI channels (1..numChannels) and 128 keys each.
func NewKeyboardMapping(numChannels int) *KeyboardMapping {
	if numChannels <= 0 {
		numChannels = 16
	}
	entries := make([]map[int]KeyEntry, numChannels)
	for i := range entries {
		entries[i] = make(map[int]KeyEntry)
	}
	return &KeyboardMapping{numChannels: numChannels, entries: entries}
}

func (m *KeyboardMapping) defaultEntry(key int) KeyEntry {
	return KeyEntry{Key: key, Channel: defaultChannel}
}

// Map resolves an incoming (key, channel) to its outgoing (key, channel).
func (m *KeyboardMapping) Map(key, channel int) KeyEntry {
	if channel < 1 || channel > m.numChannels {
		return m.defaultEntry(key)
	}
	if e, ok := m.entries[channel-1][key]; ok {
		return e
	}
	return m.defaultEntry(key)
}

// Set overrides the mapping for an incoming (key, channel).
func (m *KeyboardMapping) Set(key, channel int, out KeyEntry) {
	if channel < 1 || channel > m.numChannels {
		return
	}
	if out == m.defaultEntry(key) {
		delete(m.entries[channel-1], key)
		return
	}
	m.entries[channel-1][key] = out
}

// Reset clears all overrides, restoring the identity diagonal.
func (m *KeyboardMapping) Reset() {
	for i := range m.entries {
		m.entries[i] = make(map[int]KeyEntry)
	}
}

// NumChannels returns the number of channels this mapping covers.
func (m *KeyboardMapping) NumChannels() int { return m.numChannels }

// Serialize returns a compact string listing only entries that differ
// from the default diagonal, one per line, as "channel:key:outKey:outChannel".
func (m *KeyboardMapping) Serialize() string {
	var b strings.Builder
	for ch := 1; ch <= m.numChannels; ch++ {
		keys := make([]int, 0, len(m.entries[ch-1]))
		for k := range m.entries[ch-1] {
			keys = append(keys, k)
		}
		for i := 0; i < len(keys); i++ {
			for j := i + 1; j < len(keys); j++ {
				if keys[j] < keys[i] {
					keys[i], keys[j] = keys[j], keys[i]
				}
			}
		}
		for _, k := range keys {
			e := m.entries[ch-1][k]
			fmt.Fprintf(&b, "%d:%d:%d:%d\n", ch, k, e.Key, e.Channel)
		}
	}
	return b.String()
}

// DeserializeKeyboardMapping parses the format produced by Serialize.
func DeserializeKeyboardMapping(numChannels int, data string) (*KeyboardMapping, error) {
	m := NewKeyboardMapping(numChannels)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("tuning: malformed keyboard mapping line %q", line)
		}
		vals := make([]int, 4)
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("tuning: malformed keyboard mapping line %q: %w", line, err)
			}
			vals[i] = v
		}
		m.Set(vals[1], vals[0], KeyEntry{Key: vals[2], Channel: vals[3]})
	}
	return m, nil
}

// ImportScalaMapping parses a Scala-style .kbm mapping file: comment
// lines start with '!'; the first two non-comment lines are the mapping
// size and the first MIDI note the mapping starts at, followed by one
// mapping entry per line (an integer scale-degree offset, or "x" for an
// unmapped key). This core treats the import as producing a
// single-channel remap (channel 1) of key -> key+offset.
func ImportScalaMapping(content string) (*KeyboardMapping, error) {
	m := NewKeyboardMapping(16)
	var mappingSize, firstNote int
	var sawSize, sawFirstNote bool
	entryIndex := 0
	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		if !sawSize {
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("tuning: invalid .kbm mapping size %q: %w", line, err)
			}
			mappingSize = v
			sawSize = true
			continue
		}
		if !sawFirstNote {
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("tuning: invalid .kbm first note %q: %w", line, err)
			}
			firstNote = v
			sawFirstNote = true
			continue
		}
		if entryIndex >= mappingSize {
			break
		}
		if line != "x" {
			degree, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("tuning: invalid .kbm degree entry %q: %w", line, err)
			}
			key := firstNote + entryIndex
			m.Set(key, defaultChannel, KeyEntry{Key: key + degree, Channel: defaultChannel})
		}
		entryIndex++
	}
	return m, nil
}
