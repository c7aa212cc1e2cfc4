package contract

// Attribute is a key/value pair describing what an operation did.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BankMsg instructs the host to send native funds from the contract.
type BankMsg struct {
	ToAddress string `json:"to_address"`
	Amount    Coins  `json:"amount"`
}

// Response is the effect set of a successful operation. The host applies it
// atomically with the storage writes.
type Response struct {
	Attributes []Attribute `json:"attributes"`
	Messages   []BankMsg   `json:"messages"`
}

// NewResponse creates an empty response
func NewResponse() *Response {
	return &Response{
		Attributes: []Attribute{},
		Messages:   []BankMsg{},
	}
}

// AddAttribute appends an attribute and returns the response for chaining.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddMessage appends an outgoing transfer.
func (r *Response) AddMessage(msg BankMsg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// Attribute returns the first value recorded under key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
