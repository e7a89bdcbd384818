package action

import (
	"encoding/json"

	"github.com/go-resty/resty/v2"
)

// decodeBody returns the response body as parsed JSON when possible,
// otherwise as a string.
func decodeBody(response *resty.Response) any {
	raw := response.Body()
	if len(raw) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		return decoded
	}

	return string(raw)
}
