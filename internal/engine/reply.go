package engine

import "encoding/json"

// Reply is the decoded outcome of one command exchange. A reply is
// structured when the received bytes parse as a JSON object; anything else
// is carried through verbatim as unstructured text. Unstructured is a valid
// outcome, not an error.
type Reply struct {
	raw    string
	fields map[string]any
}

// DecodeReply interprets raw engine bytes, falling back to opaque text when
// they are not a JSON object.
func DecodeReply(raw []byte) Reply {
	r := Reply{raw: string(raw)}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return r
	}
	r.fields = fields
	return r
}

// Structured reports whether the reply decoded as a JSON object.
func (r Reply) Structured() bool { return r.fields != nil }

// Text returns the reply bytes exactly as received.
func (r Reply) Text() string { return r.raw }

// Fields returns the decoded mapping, or nil for unstructured replies.
func (r Reply) Fields() map[string]any { return r.fields }

// Field looks up one decoded key.
func (r Reply) Field(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Rejected reports whether a structured reply carries an explicit failure
// envelope. The engine marks failures with status:"error"; some deployments
// use an ok:false flag instead. Unstructured replies are never rejections.
func (r Reply) Rejected() bool {
	if r.fields == nil {
		return false
	}
	if status, ok := r.fields["status"].(string); ok {
		return status == "error"
	}
	if okFlag, ok := r.fields["ok"].(bool); ok {
		return !okFlag
	}
	return false
}

// Message returns the human-readable detail of a structured reply, checking
// the field names the engine is known to use.
func (r Reply) Message() string {
	for _, key := range []string{"message", "reason", "error"} {
		if msg, ok := r.fields[key].(string); ok {
			return msg
		}
	}
	return ""
}

// Data returns the nested status mapping carried by status replies, or nil.
func (r Reply) Data() map[string]any {
	data, _ := r.fields["data"].(map[string]any)
	return data
}
