package lifecycle

import (
	"bytes"
	"encoding/json"
	"sort"
)

type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

// Event is a custom-resource lifecycle notification as delivered by
// CloudFormation (directly or through the CDK provider framework).
type Event struct {
	RequestType           RequestType `json:"RequestType"`
	ResponseURL           string      `json:"ResponseURL,omitempty"`
	StackID               string      `json:"StackId"`
	RequestID             string      `json:"RequestId"`
	ResourceType          string      `json:"ResourceType,omitempty"`
	LogicalResourceID     string      `json:"LogicalResourceId"`
	PhysicalResourceID    string      `json:"PhysicalResourceId,omitempty"`
	ResourceProperties    Properties  `json:"ResourceProperties"`
	OldResourceProperties Properties  `json:"OldResourceProperties,omitempty"`
}

// Properties is the resource property bag. CloudFormation sends strings,
// but scalars that arrive as numbers or booleans are kept in their JSON
// text form so they can still be decoded.
type Properties map[string]string

func (p *Properties) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Properties, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return err
		}
		out[k] = buf.String()
	}
	*p = out
	return nil
}

// Keys returns the property names in sorted order. Values are not exposed
// to logs since some of them are passwords.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
