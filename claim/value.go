/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package claim

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the shapes a claim value can take.
type Kind uint8

const (
	// InvalidKind is the kind of the zero Value.
	InvalidKind Kind = iota
	StringKind
	NumberKind
	BoolKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "string"
	case NumberKind:
		return "number"
	case BoolKind:
		return "boolean"
	case ObjectKind:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a claim property value: a string, number, boolean or a nested object of values.
// The zero Value is invalid and is rejected when digesting.
type Value struct {
	kind    Kind
	str     string
	number  float64
	boolean bool
	object  map[string]Value
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: StringKind, str: s}
}

// Number creates a number Value.
func Number(n float64) Value {
	return Value{kind: NumberKind, number: n}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{kind: BoolKind, boolean: b}
}

// Object creates an object Value. The map is copied.
func Object(properties map[string]Value) Value {
	copied := make(map[string]Value, len(properties))
	for k, v := range properties {
		copied[k] = v
	}
	return Value{kind: ObjectKind, object: copied}
}

// ValueOf converts a Go value as produced by encoding/json (or a literal) into a Value.
func ValueOf(raw interface{}) (Value, error) {
	return valueOf("", raw)
}

// MustValueOf is like ValueOf but panics on error.
func MustValueOf(raw interface{}) Value {
	v, err := ValueOf(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func valueOf(path string, raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case Value:
		return t, t.validate(path)
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), checkNumber(path, t)
	case float32:
		return Number(float64(t)), checkNumber(path, float64(t))
	case int:
		return Number(float64(t)), checkInteger(path, int64(t))
	case int64:
		return Number(float64(t)), checkInteger(path, t)
	case int32:
		return Number(float64(t)), nil
	case uint64:
		if t > maxExactInteger {
			return Value{}, malformed(path, "integer %d can't be represented exactly", t)
		}
		return Number(float64(t)), nil
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			i, err := t.Int64()
			if err != nil {
				return Value{}, malformed(path, "integer %s can't be represented exactly", t)
			}
			return Number(float64(i)), checkInteger(path, i)
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, malformed(path, "invalid number: %s", t)
		}
		return Number(f), checkNumber(path, f)
	case map[string]interface{}:
		object := make(map[string]Value, len(t))
		for k, sub := range t {
			subPath := join(path, k)
			if k == "" {
				return Value{}, malformed(subPath, "empty key")
			}
			v, err := valueOf(subPath, sub)
			if err != nil {
				return Value{}, err
			}
			object[k] = v
		}
		return Value{kind: ObjectKind, object: object}, nil
	case nil:
		return Value{}, malformed(path, "null values are not allowed")
	case []interface{}:
		return Value{}, malformed(path, "arrays are not allowed")
	default:
		return Value{}, malformed(path, "unsupported type %T", raw)
	}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// AsString returns the string and true if the value is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == StringKind
}

// AsNumber returns the number and true if the value is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.number, v.kind == NumberKind
}

// AsBool returns the boolean and true if the value is a boolean.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == BoolKind
}

// AsObject returns a copy of the properties and true if the value is an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != ObjectKind {
		return nil, false
	}
	return Object(v.object).object, true
}

// Keys returns the sorted property names of an object value.
func (v Value) Keys() []string {
	return sortedKeys(v.object)
}

// Interface converts the value back into plain Go values (string, float64, bool, map[string]interface{}).
func (v Value) Interface() interface{} {
	switch v.kind {
	case StringKind:
		return v.str
	case NumberKind:
		return v.number
	case BoolKind:
		return v.boolean
	case ObjectKind:
		result := make(map[string]interface{}, len(v.object))
		for k, sub := range v.object {
			result[k] = sub.Interface()
		}
		return result
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and (deeply) equal contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case StringKind:
		return v.str == other.str
	case NumberKind:
		return v.number == other.number
	case BoolKind:
		return v.boolean == other.boolean
	case ObjectKind:
		if len(v.object) != len(other.object) {
			return false
		}
		for k, sub := range v.object {
			otherSub, ok := other.object[k]
			if !ok || !sub.Equal(otherSub) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) validate(path string) error {
	switch v.kind {
	case StringKind, BoolKind:
		return nil
	case NumberKind:
		return checkNumber(path, v.number)
	case ObjectKind:
		for _, k := range sortedKeys(v.object) {
			subPath := join(path, k)
			if k == "" {
				return malformed(subPath, "empty key")
			}
			if err := v.object[k].validate(subPath); err != nil {
				return err
			}
		}
		return nil
	default:
		return malformed(path, "value must be a string, number, boolean or object")
	}
}

// MarshalJSON writes the value as compact JSON with sorted object keys and without HTML escaping.
// This is the canonical form statements are hashed over.
func (v Value) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := v.writeJSON("", buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a value, rejecting null, arrays and empty keys.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) writeJSON(path string, buf *bytes.Buffer) error {
	switch v.kind {
	case StringKind:
		return writeJSONString(buf, v.str)
	case NumberKind:
		if err := checkNumber(path, v.number); err != nil {
			return err
		}
		// encoding/json formats floats like ECMAScript does
		data, err := json.Marshal(v.number)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.boolean))
		return nil
	case ObjectKind:
		return writeJSONObject(path, buf, v.object)
	default:
		return malformed(path, "value must be a string, number, boolean or object")
	}
}

func writeJSONObject(path string, buf *bytes.Buffer, object map[string]Value) error {
	buf.WriteByte('{')
	for i, k := range sortedKeys(object) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := object[k].writeJSON(join(path, k), buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	encoder := json.NewEncoder(&tmp)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// maxExactInteger is the largest integer a float64 holds without rounding (2^53).
const maxExactInteger = 1 << 53

func checkInteger(path string, i int64) error {
	if i > maxExactInteger || i < -maxExactInteger {
		return malformed(path, "integer %d can't be represented exactly", i)
	}
	return nil
}

func checkNumber(path string, n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return malformed(path, "number must be finite")
	}
	return nil
}

func sortedKeys(object map[string]Value) []string {
	keys := make([]string, 0, len(object))
	for k := range object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
