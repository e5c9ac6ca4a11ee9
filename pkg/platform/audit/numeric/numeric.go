// Package numeric normalizes numbers in generic value trees (maps, slices,
// scalars) to arbitrary-precision decimals before they reach a store, and back
// to JSON numbers when a store needs a textual encoding.
package numeric

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrNotFinite is returned for NaN and infinite floats, which no decimal
// representation can hold.
var ErrNotFinite = errors.New("numeric: value is not finite")

// ToDecimal returns a copy of v with every numeric leaf replaced by a
// decimal.Decimal. Maps and slices are walked recursively; other values are
// returned unchanged.
func ToDecimal(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			conv, err := ToDecimal(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = conv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			conv, err := ToDecimal(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, fmt.Errorf("numeric: parse %q: %w", t.String(), err)
		}
		return d, nil
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int8:
		return decimal.NewFromInt(int64(t)), nil
	case int16:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return fromUint(uint64(t)), nil
	case uint16:
		return fromUint(uint64(t)), nil
	case uint32:
		return fromUint(uint64(t)), nil
	case uint64:
		return fromUint(t), nil
	default:
		return v, nil
	}
}

func fromFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNotFinite
	}
	return decimal.NewFromFloat(f), nil
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

// ToJSON returns a copy of v with every decimal.Decimal replaced by the
// equivalent json.Number, so encoding/json writes it as a bare number.
func ToJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = ToJSON(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = ToJSON(child)
		}
		return out
	case decimal.Decimal:
		return json.Number(t.String())
	default:
		return v
	}
}

// Object converts any JSON-encodable value into a generic map tree. Numbers
// come back as json.Number so no precision is lost before ToDecimal.
func Object(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("numeric: marshal: %w", err)
	}
	return DecodeObject(raw)
}

// DecodeObject decodes a JSON object keeping numbers as json.Number.
func DecodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("numeric: decode object: %w", err)
	}
	return out, nil
}

// DecimalObject is Object followed by ToDecimal.
func DecimalObject(v any) (map[string]any, error) {
	tree, err := Object(v)
	if err != nil {
		return nil, err
	}
	conv, err := ToDecimal(tree)
	if err != nil {
		return nil, err
	}
	out, _ := conv.(map[string]any)
	return out, nil
}
