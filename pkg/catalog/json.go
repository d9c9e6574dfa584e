package catalog

import (
	"encoding/json"
	"errors"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON decodes data into v. Vendor catalog dumps routinely
// carry trailing commas or single quotes, so a syntax error triggers a
// jsonrepair pass before giving up. When the repair itself fails, the
// original syntax error wins; it names the offending offset.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		return err
	}
	fixed, ferr := jsonrepair.JSONRepair(string(data))
	if ferr != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}
