package tree

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal serializes the whole document rooted at n.
func Marshal(n *Node) ([]byte, error) {
	return json.Marshal(n)
}

// Unmarshal parses a document previously produced by Marshal.
func Unmarshal(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// SetValue JSON-encodes v and stores it under key, for callers building
// a node from typed Go values rather than raw bytes.
func (n *Node) SetValue(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	n.Set(key, b)
	return nil
}

// Value decodes the property stored under key into dst. Returns false
// if the property is absent, leaving dst untouched (§6 forward
// compatibility: a reader silently ignoring a property it doesn't
// have is the same code path as one that's merely missing).
func (n *Node) Value(key string, dst interface{}) (bool, error) {
	raw, ok := n.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}
