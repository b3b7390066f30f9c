package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds compiled schemas keyed by resource URL.
var compiled sync.Map // map[string]*jsonschema.Schema

// settle applies req.Schema to a vendor reply and builds the Response.
// Vendors fill in Usage and Model afterwards.
func settle(req Request, raw json.RawMessage, stop string) (*Response, error) {
	resp := &Response{Content: raw, StopReason: stop}
	if req.Schema == nil {
		return resp, nil
	}
	content, dropped, err := check(req.Schema, raw)
	if err != nil {
		var inv *ErrInvalidResponse
		if stop == "max_tokens" && errors.As(err, &inv) {
			return nil, &ErrMaxTokensExceeded{Content: raw}
		}
		return nil, err
	}
	resp.Content = content
	resp.Dropped = dropped
	return resp, nil
}

// check validates raw against the schema. Batch schemas are checked per
// item: failing items are dropped and reported, and the reply is only
// rejected when its envelope is wrong or no item survives.
func check(schema *Schema, raw json.RawMessage) (json.RawMessage, []DroppedItem, error) {
	if schema.Batch == nil {
		doc, err := decode(raw)
		if err != nil {
			return nil, nil, &ErrInvalidResponse{Content: raw, Err: err}
		}
		s, err := compile(schema.Name, schema.Definition)
		if err != nil {
			return nil, nil, &ErrInvalidResponse{Content: raw, Err: err}
		}
		if err := s.Validate(doc); err != nil {
			return nil, nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %s", schema.Name, flatten(err))}
		}
		return raw, nil, nil
	}

	elems, err := batchElements(raw, schema.Batch.Key)
	if err != nil {
		return nil, nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	itemSchema, err := compile(schema.Name+"-item", schema.Batch.Item)
	if err != nil {
		return nil, nil, &ErrInvalidResponse{Content: raw, Err: err}
	}

	kept := make([]json.RawMessage, 0, len(elems))
	var dropped []DroppedItem
	for i, elem := range elems {
		v, err := decode(elem)
		if err == nil {
			err = itemSchema.Validate(v)
		}
		if err != nil {
			dropped = append(dropped, DroppedItem{Index: i, Reason: flatten(err)})
			continue
		}
		kept = append(kept, elem)
	}
	if len(kept) == 0 && len(dropped) > 0 {
		return nil, dropped, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("all %d items failed, first: %s", len(dropped), dropped[0].Reason),
		}
	}

	out, err := json.Marshal(map[string][]json.RawMessage{schema.Batch.Key: kept})
	if err != nil {
		return nil, nil, err
	}
	return out, dropped, nil
}

// batchElements returns the elements of the item array. A bare top-level
// array is accepted as well as {"<key>": [...]}.
func batchElements(raw json.RawMessage, key string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return elems, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	field, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("missing %q array", key)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(field, &elems); err != nil {
		return nil, fmt.Errorf("%q is not an array", key)
	}
	return elems, nil
}

func decode(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

func compile(name string, def map[string]any) (*jsonschema.Schema, error) {
	url := "schema://" + name + ".json"
	if s, ok := compiled.Load(url); ok {
		return s.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go maps with typed slices.
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	doc, err := decode(b)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	compiled.Store(url, s)
	return s, nil
}

// flatten renders a validation error on one line.
func flatten(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
