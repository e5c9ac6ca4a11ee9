package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// item is the stored shape of an audit record.
type item struct {
	LoanID    string         `dynamodbav:"loan_id"`
	Timestamp string         `dynamodbav:"timestamp"`
	Request   map[string]any `dynamodbav:"request_data"`
	Response  map[string]any `dynamodbav:"response_data"`
	TTL       int64          `dynamodbav:"ttl"`
}

// number writes a decimal as an N attribute using its exact string form.
type number decimal.Decimal

func (n number) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: decimal.Decimal(n).String()}, nil
}

var decoder = attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
	o.UseNumber = true
})

// wrapDecimals prepares a normalized tree for attributevalue. Floats are
// rejected so nothing reaches the table with binary rounding.
func wrapDecimals(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			w, err := wrapDecimals(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			w, err := wrapDecimals(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = w
		}
		return out, nil
	case decimal.Decimal:
		return number(t), nil
	case float32, float64:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	default:
		return v, nil
	}
}

// unwrapNumbers turns the decoder's Number leaves into decimal.Decimal.
func unwrapNumbers(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			u, err := unwrapNumbers(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			t[k] = u
		}
		return t, nil
	case []any:
		for i, child := range t {
			u, err := unwrapNumbers(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			t[i] = u
		}
		return t, nil
	case attributevalue.Number:
		d, err := decimal.NewFromString(string(t))
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", string(t), err)
		}
		return d, nil
	default:
		return v, nil
	}
}

func wrapObject(name string, m map[string]any) (map[string]any, error) {
	w, err := wrapDecimals(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out, _ := w.(map[string]any)
	return out, nil
}

func unwrapObject(name string, m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, fmt.Errorf("missing %s", name)
	}
	u, err := unwrapNumbers(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out, _ := u.(map[string]any)
	return out, nil
}
