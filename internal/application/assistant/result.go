package assistant

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the uniform response of every assistant operation. It serializes
// as {"status":"success","<Field>":Text} or {"status":"error","message":Message},
// with Extra merged in.
type Result struct {
	Status  string
	Field   string
	Text    string
	Message string
	Extra   map[string]string
}

func success(field, text string) Result {
	return Result{Status: StatusSuccess, Field: field, Text: text}
}

func failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}

func (r Result) OK() bool { return r.Status == StatusSuccess }

func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, 3+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	m["status"] = r.Status
	if r.Field != "" && r.Status == StatusSuccess {
		m[r.Field] = r.Text
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return json.Marshal(m)
}
