// Package policy implements the password strength rules applied on
// registration and password change.
//
// A Policy runs every configured Validator and collects all failure messages,
// so a client sees the complete list in one response.
package policy

// Attribute is a piece of user data the password must not resemble.
// Label is the human-readable name used in messages ("email address").
type Attribute struct {
	Label string
	Value string
}

// Validator checks one rule. It returns "" when the password passes.
type Validator interface {
	Validate(password string, attrs []Attribute) string
}

type Policy struct {
	validators []Validator
}

func New(validators ...Validator) *Policy {
	return &Policy{validators: validators}
}

// Default mirrors the usual framework defaults: similarity, minimum length,
// common-password list, and the all-digits check.
func Default(minLength int) *Policy {
	return New(
		UserAttributeSimilarity(DefaultMaxSimilarity),
		MinimumLength(minLength),
		CommonPassword(DefaultCommonPasswords()),
		Numeric(),
	)
}

// Validate returns the failure messages in validator order, or nil.
func (p *Policy) Validate(password string, attrs []Attribute) []string {
	if p == nil {
		return nil
	}
	var msgs []string
	for _, v := range p.validators {
		if msg := v.Validate(password, attrs); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
