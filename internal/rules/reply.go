package rules

import (
	"encoding/json"
	"errors"
	"strings"
)

// Reply is the decoded success body of the rule-creation endpoint.
// Two shapes are seen in the wild: {"data":{"name","description"}} and a
// top-level "response" or "message" string.
type Reply struct {
	Data     *RuleData `json:"data,omitempty"`
	Response string    `json:"response,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// RuleData describes the created rule.
type RuleData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var errNotObject = errors.New("reply body is not a JSON object")

// decodeReply accepts only a JSON object; anything else is an unparseable body.
func decodeReply(body []byte) (Reply, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Reply{}, err
	}
	if raw == nil {
		return Reply{}, errNotObject
	}
	var r Reply
	if err := json.Unmarshal(body, &r); err != nil {
		return Reply{}, err
	}
	return r, nil
}

// Content renders the assistant message for a successful exchange.
func (r Reply) Content() string {
	if r.Data != nil && (r.Data.Name != "" || r.Data.Description != "") {
		var b strings.Builder
		b.WriteString("Rule created successfully.")
		if r.Data.Name != "" {
			b.WriteString("\nName: ")
			b.WriteString(r.Data.Name)
		}
		if r.Data.Description != "" {
			b.WriteString("\nDescription: ")
			b.WriteString(r.Data.Description)
		}
		return b.String()
	}

	detail := r.Response
	if detail == "" {
		detail = r.Message
	}
	if detail != "" {
		return "Rules created successfully. " + detail
	}
	return "Rules created successfully."
}
