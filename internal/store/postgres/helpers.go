package postgres

import (
	"encoding/json"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// parametersFromColumn decodes a jsonb parameters column (a flat JSON
// object) into domain.Parameters. A NULL or empty column is an empty map,
// not an error — packages and actions commonly have no parameters.
func parametersFromColumn(raw []byte) (domain.Parameters, error) {
	if len(raw) == 0 {
		return domain.Parameters{}, nil
	}
	var p domain.Parameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// annotationsFromColumn decodes a jsonb annotations column the same way.
func annotationsFromColumn(raw []byte) (domain.Annotations, error) {
	if len(raw) == 0 {
		return domain.Annotations{}, nil
	}
	var a domain.Annotations
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// immutableSetFromColumn decodes a jsonb array of parameter names (the
// action's immutableParameters list) into the set shape domain.Action
// expects.
func immutableSetFromColumn(raw []byte) (map[string]bool, error) {
	set := map[string]bool{}
	if len(raw) == 0 {
		return set, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, err
	}
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
