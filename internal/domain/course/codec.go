package course

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode builds a Course from a stored value. The key always wins over the
// id stored inside the value; a stored id is tolerated and ignored.
func Decode(key string, raw json.RawMessage) (Course, error) {
	var fields map[string]any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Course{}, fmt.Errorf("%w: key %s: %v", ErrDecode, key, err)
	}
	if fields == nil {
		return Course{}, fmt.Errorf("%w: key %s: empty value", ErrDecode, key)
	}
	delete(fields, "id")

	var c Course
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &c,
		TagName: "mapstructure",
	})
	if err != nil {
		return Course{}, fmt.Errorf("%w: key %s: %v", ErrDecode, key, err)
	}
	if err := md.Decode(fields); err != nil {
		return Course{}, fmt.Errorf("%w: key %s: %v", ErrDecode, key, err)
	}

	c.ID = key
	return c, nil
}
